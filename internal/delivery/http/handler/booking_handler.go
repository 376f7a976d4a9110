package handler

import (
	"encoding/json"
	"net/http"

	"slot-reservation-service/internal/delivery/dto"
	"slot-reservation-service/internal/domain/entity"
	"slot-reservation-service/internal/usecase"
	"slot-reservation-service/pkg/response"
	"slot-reservation-service/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type BookingHandler struct {
	reservationUsecase usecase.ReservationUsecase
	validator          *validator.CustomValidator
}

func NewBookingHandler(reservationUsecase usecase.ReservationUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		reservationUsecase: reservationUsecase,
		validator:          validator,
	}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	var req dto.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.reservationUsecase.Book(r.Context(), &req, caller)
	if err != nil {
		switch err {
		case usecase.ErrSlotNotFound:
			response.NotFound(w, "Slot not found")
		case usecase.ErrSlotUnavailable:
			response.Conflict(w, "Slot is no longer available")
		case usecase.ErrAlreadyBooked:
			response.Conflict(w, "Slot has already been booked")
		case usecase.ErrInvalidRequester:
			response.Forbidden(w, "You cannot book this slot")
		default:
			response.InternalServerError(w, "Failed to create booking")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", booking)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	vars := mux.Vars(r)
	bookingID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	err = h.reservationUsecase.Cancel(r.Context(), bookingID, caller)
	if err != nil {
		switch err {
		case usecase.ErrBookingNotFound:
			response.NotFound(w, "Booking not found")
		case usecase.ErrForbidden:
			response.Forbidden(w, "You may not cancel this booking")
		case usecase.ErrInvalidTransition:
			response.Conflict(w, "Booking can no longer be cancelled")
		default:
			response.InternalServerError(w, "Failed to cancel booking")
		}
		return
	}

	response.Success(w, http.StatusOK, "Booking cancelled successfully", nil)
}

func (h *BookingHandler) MarkOutcome(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	vars := mux.Vars(r)
	bookingID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	var req dto.BookingOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	err = h.reservationUsecase.MarkOutcome(r.Context(), bookingID, caller, entity.BookingStatus(req.Outcome))
	if err != nil {
		switch err {
		case usecase.ErrBookingNotFound:
			response.NotFound(w, "Booking not found")
		case usecase.ErrForbidden:
			response.Forbidden(w, "Only the slot's provider may record the outcome")
		case usecase.ErrInvalidTransition:
			response.Conflict(w, "Booking status does not allow this outcome")
		default:
			response.InternalServerError(w, "Failed to record booking outcome")
		}
		return
	}

	response.Success(w, http.StatusOK, "Booking outcome recorded", nil)
}

func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	bookings, err := h.reservationUsecase.GetMyBookings(r.Context(), caller)
	if err != nil {
		response.InternalServerError(w, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) GetReceivedBookings(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	bookings, err := h.reservationUsecase.GetReceivedBookings(r.Context(), caller)
	if err != nil {
		response.InternalServerError(w, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}
