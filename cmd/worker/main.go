package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbook/config"
	"github.com/Domenick1991/flightbook/internal/cache"
	"github.com/Domenick1991/flightbook/internal/email"
	"github.com/Domenick1991/flightbook/internal/kafka"
	"github.com/Domenick1991/flightbook/internal/logger"
	"github.com/Domenick1991/flightbook/internal/repository"
	"github.com/Domenick1991/flightbook/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logr := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
	defer redisCache.Close()

	flightService := flights.NewFlightService(repository.NewFlightRepository(pool), redisCache, logr)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logr)
	defer consumer.Close()

	emailSender := email.NewSender(logr)

	go func() {
		if err := consumer.ConsumeBookingEvents(ctx, emailSender.Send); err != nil {
			logr.Error("consumer stopped", "error", err)
			stop()
		}
	}()

	refreshTicker := time.NewTicker(time.Duration(cfg.Worker.CacheRefreshSeconds) * time.Second)
	defer refreshTicker.Stop()

	logr.Info("worker started", "topic", cfg.Kafka.NotificationsTopic)
	for {
		select {
		case <-refreshTicker.C:
			if err := flightService.RefreshCache(ctx); err != nil {
				logr.Warn("refresh flights cache", "error", err)
			}
		case <-ctx.Done():
			logr.Info("worker shutting down")
			return
		}
	}
}
