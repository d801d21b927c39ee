package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/feed-system/social-api/internal/config"
	"github.com/feed-system/social-api/internal/repository"
	"github.com/feed-system/social-api/internal/workers"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/feed-system/social-api/pkg/queue"
	gormlogger "gorm.io/gorm/logger"
)

// The worker relays activity events from the outbox table to Kafka. Run it
// alongside the API when outbox.run_in_api is false.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting outbox relay worker...")

	if !cfg.Outbox.Enabled {
		logger.Warn("Outbox is disabled, nothing to relay")
		return
	}

	db, err := repository.NewDatabase(&cfg.Database, gormlogger.Warn)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	producer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ActivityEvents)
	defer producer.Close()

	relay := workers.NewOutboxRelay(repository.NewStore(db.DB), producer, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		relay.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	<-done

	logger.Info("Worker exited")
}
