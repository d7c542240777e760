package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/synapse-edu/classroom-service/internal/config"
	"github.com/synapse-edu/classroom-service/internal/events"
	"github.com/synapse-edu/classroom-service/internal/handlers"
	"github.com/synapse-edu/classroom-service/internal/llm"
	"github.com/synapse-edu/classroom-service/internal/mailer"
	"github.com/synapse-edu/classroom-service/internal/repositories/postgres"
	"github.com/synapse-edu/classroom-service/internal/services"
	"github.com/synapse-edu/classroom-service/internal/storage"
	"github.com/synapse-edu/classroom-service/internal/utils"
	"github.com/synapse-edu/classroom-service/internal/validator"
	"github.com/synapse-edu/classroom-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis: %v", err)
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize document storage
	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize document storage: %v", err)
	}

	// Initialize the event bus: Kafka when brokers are configured,
	// in-process otherwise.
	var bus *events.Bus
	if len(cfg.KafkaBrokers) > 0 {
		bus, err = events.NewKafkaBus(cfg.KafkaBrokers, slogLogger, logger)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka bus: %v", err)
		}
	} else {
		bus = events.NewGoChannelBus(slogLogger, logger)
	}

	// Initialize the AI feedback backend
	var generator llm.TextGenerator
	if cfg.GeminiAPIKey != "" {
		generator, err = llm.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, logger)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI feedback disabled")
		generator = llm.NewUnavailableGenerator()
	}

	// Initialize validator
	validator := validator.New()

	// Initialize services
	serviceManager := services.NewServiceManager(services.ServiceManagerConfig{
		Repo:         repoManager.GetRepository(),
		Store:        store,
		Publisher:    bus.Publisher,
		Generator:    generator,
		Logger:       slogLogger,
		Validator:    validator,
		MasterEmails: cfg.MasterEmails,
	})

	// Start the notification consumer
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	mail := mailer.NewFromConfig(cfg, logger)
	notifier := services.NewNotificationService(bus, mail, slogLogger)
	if err := notifier.Start(consumerCtx); err != nil {
		log.Fatalf("Failed to start notification consumer: %v", err)
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(cfg, serviceManager, store, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger, cfg.SessionSecret)

	// Setup routes
	handlerManager.SetupRoutes(router, serviceManager)

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Stop the notification consumer and close the bus
	consumerCancel()
	if err := bus.Close(); err != nil {
		log.Printf("Failed to close event bus: %v", err)
	}

	// Shutdown services
	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	// Close repository connections (database and Redis)
	if err := repoManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown repositories: %v", err)
	}

	logger.Info("Server exited")
}
