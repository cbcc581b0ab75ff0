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

	"github.com/SAP-F-2025/diet-service/internal/cache"
	"github.com/SAP-F-2025/diet-service/internal/config"
	"github.com/SAP-F-2025/diet-service/internal/events"
	"github.com/SAP-F-2025/diet-service/internal/handlers"
	"github.com/SAP-F-2025/diet-service/internal/i18n"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
	"github.com/SAP-F-2025/diet-service/internal/repositories/memory"
	"github.com/SAP-F-2025/diet-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/diet-service/internal/security"
	"github.com/SAP-F-2025/diet-service/internal/services"
	"github.com/SAP-F-2025/diet-service/internal/utils"
	"github.com/SAP-F-2025/diet-service/pkg"
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

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize storage
	repoManager, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	repo := repoManager.GetRepository()

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	hasher, err := security.NewPasswordHasher(cfg.PasswordHasher)
	if err != nil {
		log.Fatalf("Failed to initialize password hasher: %v", err)
	}

	// Initialize events
	var publisher events.EventPublisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher, err := events.NewKafkaEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize kafka publisher: %v", err)
		}
		publisher = kafkaPublisher
	} else {
		channelPublisher, channel := events.NewGoChannelEventPublisher(cfg.Kafka.Topic, slogLogger)
		if err := events.LogEvents(ctx, channel, cfg.Kafka.Topic, slogLogger); err != nil {
			log.Fatalf("Failed to subscribe to events: %v", err)
		}
		publisher = channelPublisher
	}

	catalog, err := i18n.Load()
	if err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}
	if catalog, err = catalog.WithFallback(cfg.DefaultLocale); err != nil {
		log.Fatalf("Failed to set default locale: %v", err)
	}

	// Initialize services
	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      repo,
		Cache:     cache.NewCacheManager(redisClient),
		Publisher: publisher,
		Hasher:    hasher,
		Logger:    slogLogger,
	})
	if err := serviceManager.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	var sso handlers.SSO
	if cfg.Casdoor.Enabled() {
		sso = handlers.NewCasdoorSSO(cfg.Casdoor)
		logger.Info("Casdoor bearer tokens enabled", "endpoint", cfg.Casdoor.Endpoint)
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, catalog, sso, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	stop()
	if err := serviceManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}
	if err := repoManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to close storage", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close redis", "error", err)
		}
	}

	logger.Info("Server exited")
}

// openStore builds the repository selected by STORE_DRIVER.
func openStore(cfg *config.Config) (repositories.RepositoryManager, error) {
	var manager repositories.RepositoryManager
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		manager = memory.NewRepositoryManager()
	default:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		manager = postgres.NewRepositoryManager(postgres.RepositoryConfig{DB: db})
	}
	if err := manager.Initialize(); err != nil {
		return nil, err
	}
	return manager, nil
}
