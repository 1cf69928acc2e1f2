package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NomadCrew/feedback-desk/config"
	"github.com/NomadCrew/feedback-desk/db"
	_ "github.com/NomadCrew/feedback-desk/docs"
	"github.com/NomadCrew/feedback-desk/handlers"
	"github.com/NomadCrew/feedback-desk/internal/events"
	istore "github.com/NomadCrew/feedback-desk/internal/store"
	"github.com/NomadCrew/feedback-desk/internal/store/memory"
	"github.com/NomadCrew/feedback-desk/internal/store/postgres"
	"github.com/NomadCrew/feedback-desk/internal/websocket"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/middleware"
	"github.com/NomadCrew/feedback-desk/models/feedback/service"
	"github.com/NomadCrew/feedback-desk/router"
	"github.com/NomadCrew/feedback-desk/services"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

// @title Feedback Desk API
// @version 1.0
// @description Public feedback submission and staff feedback management.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Feedback store
	var store istore.FeedbackStore
	var dbClient *db.DatabaseClient
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		poolConfig, err := config.ConfigurePostgresPool(&cfg.Database)
		if err != nil {
			log.Fatalf("Failed to configure database pool: %v", err)
		}
		dbClient = db.NewDatabaseClientWithConfig(poolConfig)
		if err := dbClient.Connect(ctx); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		store = postgres.NewFeedbackStore(dbClient.GetPool())
		log.Infow("Using postgres feedback store", "host", cfg.Database.Host, "database", cfg.Database.Name)
	default:
		var seed []*types.Feedback
		if cfg.Store.SeedFile != "" {
			seed, err = memory.LoadSeed(cfg.Store.SeedFile)
			if err != nil {
				log.Fatalf("Failed to load seed file: %v", err)
			}
		}
		store = memory.NewFeedbackStore(seed...)
		log.Infow("Using in-memory feedback store", "seeded", len(seed))
	}

	// Redis backs the event fan-out and the submission rate limiter.
	var redisClient *redis.Client
	var healthRedis redis.UniversalClient
	var limiterRedis redis.Cmdable
	var eventPublisher types.EventPublisher
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(config.ConfigureRedisOptions(&cfg.Redis))
		if err := config.TestRedisConnection(ctx, redisClient); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		healthRedis = redisClient
		limiterRedis = redisClient
		eventPublisher = events.NewRedisPublisher(redisClient)
	} else {
		eventPublisher = events.NewLocalPublisher()
	}

	// Confirmations go through the worker pool so submissions never wait on Resend.
	var emailer service.Emailer
	var emailPool *services.WorkerPool
	if cfg.Email.Enabled {
		emailPool = services.NewWorkerPool(cfg.WorkerPool, nil)
		emailPool.Start()
		emailer = services.NewAsyncEmailer(services.NewEmailService(&cfg.Email), emailPool)
	}

	feedbackService := service.NewFeedbackService(store, eventPublisher, emailer, service.Config{
		StrictStatus:  cfg.Feedback.StrictStatus,
		SubmitLatency: cfg.Feedback.SubmitLatency(),
		Confirmation:  cfg.Feedback.Confirmation(),
	})

	var jwtValidator middleware.Validator
	if cfg.Server.StaffJWTSecret != "" {
		v, err := middleware.NewJWTValidator(cfg.Server.StaffJWTSecret)
		if err != nil {
			log.Fatalf("Failed to create JWT validator: %v", err)
		}
		jwtValidator = v
	} else {
		log.Warn("SERVER.STAFF_JWT_SECRET is not set, staff routes are open")
	}

	healthService := services.NewHealthService(store, healthRedis, cfg.Server.Version)

	hub := websocket.NewHub(eventPublisher)
	r := router.SetupRouter(router.Dependencies{
		Config:          cfg,
		JWTValidator:    jwtValidator,
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackService),
		HealthHandler:   handlers.NewHealthHandler(healthService),
		EventStream:     websocket.NewHandler(hub, &cfg.Server),
		RedisClient:     limiterRedis,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := hub.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Failed to close websocket connections", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	if emailPool != nil {
		poolCtx, poolCancel := context.WithTimeout(context.Background(), cfg.WorkerPool.ShutdownTimeout())
		if err := emailPool.Shutdown(poolCtx); err != nil {
			log.Errorw("Failed to drain email queue", "error", err)
		}
		poolCancel()
	}
	if err := eventPublisher.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Failed to shut down event publisher", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Errorw("Failed to close redis client", "error", err)
		}
	}
	if dbClient != nil {
		dbClient.Close()
	}
	log.Info("Server exited")
}
