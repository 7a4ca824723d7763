package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostelry/service-rooms/internal/application"
	"github.com/hostelry/service-rooms/internal/auth"
	"github.com/hostelry/service-rooms/internal/config"
	"github.com/hostelry/service-rooms/internal/database"
	roomDomain "github.com/hostelry/service-rooms/internal/domain/room"
	"github.com/hostelry/service-rooms/internal/handler"
	"github.com/hostelry/service-rooms/internal/health"
	"github.com/hostelry/service-rooms/internal/kafka"
	"github.com/hostelry/service-rooms/internal/logger"
	"github.com/hostelry/service-rooms/internal/middleware"
	"github.com/hostelry/service-rooms/internal/repository"
	"go.uber.org/zap"
)

const serviceName = "service-rooms"

type publisher interface {
	application.EventPublisher
	Close() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreDriver),
	)

	// Initialize room store
	var (
		roomRepo roomDomain.Repository
		pinger   health.Pinger
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		memoryRepo := repository.NewMemoryRoomRepository()
		if cfg.IsDevelopment() {
			if err := seedRooms(context.Background(), memoryRepo); err != nil {
				log.Fatal("failed to seed rooms", zap.Error(err))
			}
			log.Info("seeded in-memory room store")
		}
		roomRepo = memoryRepo
	default:
		db, err := database.Connect(cfg.DBConfig, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}

		// Run database migrations
		if cfg.IsDevelopment() {
			if err := db.AutoMigrate(&repository.RoomModel{}); err != nil {
				log.Fatal("failed to run auto-migration", zap.Error(err))
			}
			log.Info("database migration completed (dev auto-migrate)")
		} else {
			if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
				log.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("failed to get underlying sql.DB", zap.Error(err))
		}
		defer func() { _ = sqlDB.Close() }()

		roomRepo = repository.NewGormRoomRepository(db)
		pinger = sqlDB
	}

	// Initialize JWT verifier
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.Issuer, 15*time.Minute)

	// Initialize Kafka producer
	var eventPublisher publisher = kafka.NopProducer{}
	if cfg.KafkaConfig.Enabled {
		eventPublisher = kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	}
	defer func() { _ = eventPublisher.Close() }()

	// Initialize application services
	roomService := application.NewRoomService(roomRepo, log)
	bookingService := application.NewBookingService(
		roomRepo,
		eventPublisher,
		application.BookingOptions{
			MaxAttempts: cfg.BookingConfig.MaxAttempts,
			RetryDelay:  cfg.BookingConfig.RetryDelay,
			Topic:       cfg.KafkaConfig.Topic,
		},
		log,
	)

	// Initialize HTTP handlers
	roomHandler := handler.NewRoomHandler(roomService, bookingService)
	profileHandler := handler.NewProfileHandler(roomService)

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(pinger, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register API routes
	routes := append(roomHandler.Routes(), profileHandler.Routes()...)
	handler.Register(router, jwtManager, routes...)
	for _, route := range routes {
		log.Debug("route registered",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
			zap.Stringer("access", route.Access),
		)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

// seedRooms fills an empty development store with a handful of rooms.
func seedRooms(ctx context.Context, repo roomDomain.Repository) error {
	availableFrom := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 1; i <= 10; i++ {
		rm, err := roomDomain.NewRoom(uint(100+i), fmt.Sprintf("Room %d", 100+i), float64(40+i*10), uint(i%4+1), availableFrom.AddDate(0, 0, i))
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, rm); err != nil {
			return err
		}
	}
	return nil
}
