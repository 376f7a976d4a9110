package http

import (
	"net/http"

	"slot-reservation-service/internal/delivery/http/handler"
	"slot-reservation-service/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router         *mux.Router
	authHandler    *handler.AuthHandler
	slotHandler    *handler.SlotHandler
	bookingHandler *handler.BookingHandler
	authMiddleware *middleware.AuthMiddleware
	corsMiddleware *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	slotHandler *handler.SlotHandler,
	bookingHandler *handler.BookingHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:         mux.NewRouter(),
		authHandler:    authHandler,
		slotHandler:    slotHandler,
		bookingHandler: bookingHandler,
		authMiddleware: authMiddleware,
		corsMiddleware: corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/provider", r.authHandler.RegisterProvider).Methods(http.MethodPost)
	auth.HandleFunc("/register/requester", r.authHandler.RegisterRequester).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Slot routes
	slots := api.PathPrefix("/slots").Subrouter()
	slots.Use(r.authMiddleware.Authenticate)
	slots.HandleFunc("", r.slotHandler.GetOpenSlots).Methods(http.MethodGet)
	slots.Handle("", middleware.RequireProvider(http.HandlerFunc(r.slotHandler.CreateSlot))).Methods(http.MethodPost)
	slots.Handle("/mine", middleware.RequireProvider(http.HandlerFunc(r.slotHandler.GetMySlots))).Methods(http.MethodGet)
	slots.Handle("/{id}", middleware.RequireProvider(http.HandlerFunc(r.slotHandler.DeleteSlot))).Methods(http.MethodDelete)

	// Booking routes
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.Handle("", middleware.RequireRequester(http.HandlerFunc(r.bookingHandler.CreateBooking))).Methods(http.MethodPost)
	bookings.Handle("/mine", middleware.RequireRequester(http.HandlerFunc(r.bookingHandler.GetMyBookings))).Methods(http.MethodGet)
	bookings.Handle("/received", middleware.RequireProvider(http.HandlerFunc(r.bookingHandler.GetReceivedBookings))).Methods(http.MethodGet)
	// Cancellation is open to both parties; the usecase checks who may act
	bookings.HandleFunc("/{id}/cancel", r.bookingHandler.CancelBooking).Methods(http.MethodPost)
	bookings.Handle("/{id}/outcome", middleware.RequireProvider(http.HandlerFunc(r.bookingHandler.MarkOutcome))).Methods(http.MethodPost)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
