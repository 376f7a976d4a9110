package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slot-reservation-service/config"
	deliveryHttp "slot-reservation-service/internal/delivery/http"
	"slot-reservation-service/internal/delivery/http/handler"
	"slot-reservation-service/internal/delivery/http/middleware"
	"slot-reservation-service/internal/infrastructure/cache"
	"slot-reservation-service/internal/infrastructure/database"
	"slot-reservation-service/internal/repository"
	"slot-reservation-service/internal/service"
	"slot-reservation-service/internal/usecase"
	"slot-reservation-service/pkg/clock"
	"slot-reservation-service/pkg/jwt"
	"slot-reservation-service/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Notifier    *service.RedisNotifier
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	setupLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	app.Server = initializeServer(app)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer wires all layers and returns the HTTP server
func initializeServer(app *App) *http.Server {
	cfg := app.Config
	log := logrus.StandardLogger()

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()
	systemClock := clock.NewSystemClock()

	// Stores
	reservationStore := repository.NewGormReservationStore(app.DB)
	userRepo := repository.NewUserRepository()

	// Notification port
	notifier := service.NewRedisNotifier(app.RedisClient, log, cfg.Notify)
	app.Notifier = notifier

	// Usecases
	authUsecase := usecase.NewAuthUsecase(app.DB, log, userRepo, jwtService, app.RedisClient)
	slotUsecase := usecase.NewSlotUsecase(reservationStore, log, systemClock)
	reservationUsecase := usecase.NewReservationUsecase(reservationStore, log, systemClock, notifier)

	// Handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	slotHandler := handler.NewSlotHandler(slotUsecase, customValidator)
	bookingHandler := handler.NewBookingHandler(reservationUsecase, customValidator)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, app.RedisClient)
	corsMiddleware := middleware.NewCORSMiddleware()

	router := deliveryHttp.NewRouter(authHandler, slotHandler, bookingHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close drains the notifier and closes all connections
func (app *App) Close() {
	// Let in-flight booking events go out before dropping connections
	if app.Notifier != nil {
		app.Notifier.Stop()
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
