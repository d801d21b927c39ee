package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/feed-system/social-api/internal/auth"
	"github.com/feed-system/social-api/internal/config"
	"github.com/feed-system/social-api/internal/handlers"
	"github.com/feed-system/social-api/internal/middleware"
	"github.com/feed-system/social-api/internal/repository"
	"github.com/feed-system/social-api/internal/services"
	"github.com/feed-system/social-api/internal/workers"
	"github.com/feed-system/social-api/pkg/cache"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/feed-system/social-api/pkg/queue"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting social API server...")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repository.NewDatabase(&cfg.Database, gormLogLevel(cfg.Server.Mode))
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	// Without redis, logout and account deletion cannot revoke tokens
	// before they expire.
	var revocations *auth.RevocationStore
	if cfg.Redis.Enabled {
		redisClient := cache.NewRedisClient(cache.Options{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()); err != nil {
			logger.WithError(err).Warn("Redis unreachable, token revocation checks will fail open")
		}
		revocations = auth.NewRevocationStore(redisClient)
	}

	outboxTopic := ""
	if cfg.Outbox.Enabled {
		outboxTopic = cfg.Kafka.Topics.ActivityEvents
	}

	store := repository.NewStore(db.DB)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireTime)

	activityService := services.NewActivityService(store, outboxTopic, logger)
	authService := services.NewAuthService(store, tokens, revocations, logger)
	userService := services.NewUserService(store, activityService, logger)
	postService := services.NewPostService(store, activityService, logger)
	likeService := services.NewLikeService(store, activityService, logger)
	feedService := services.NewFeedService(store, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := handlers.NewRouter(handlers.RouterConfig{
		AuthService: authService,
		UserService: userService,
		PostService: postService,
		LikeService: likeService,
		FeedService: feedService,
		Tokens:      tokens,
		Revocations: revocations,
		Logger:      logger,

		AuthRateLimit: cfg.Server.AuthRateLimit,
		AuthRateBurst: cfg.Server.AuthRateBurst,

		Metrics:  middleware.NewMetrics(registry),
		Gatherer: registry,
	})

	var relayWG sync.WaitGroup
	var relay *workers.OutboxRelay
	if cfg.Outbox.Enabled && cfg.Outbox.RunInAPI {
		producer := queue.NewKafkaProducer(cfg.Kafka.Brokers, outboxTopic)
		defer producer.Close()

		relay = workers.NewOutboxRelay(store, producer, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize, logger)
		relayWG.Add(1)
		go func() {
			defer relayWG.Done()
			relay.Start(context.Background())
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	if relay != nil {
		relay.Stop()
		relayWG.Wait()
	}

	logger.Info("Server exited")
}

func gormLogLevel(mode string) gormlogger.LogLevel {
	if mode == "release" {
		return gormlogger.Silent
	}
	return gormlogger.Warn
}
