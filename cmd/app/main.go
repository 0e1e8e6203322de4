package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbook/api"
	"github.com/Domenick1991/flightbook/config"
	"github.com/Domenick1991/flightbook/internal/auth"
	"github.com/Domenick1991/flightbook/internal/bootstrap"
	"github.com/Domenick1991/flightbook/internal/cache"
	"github.com/Domenick1991/flightbook/internal/health"
	"github.com/Domenick1991/flightbook/internal/kafka"
	"github.com/Domenick1991/flightbook/internal/logger"
	"github.com/Domenick1991/flightbook/internal/metrics"
	"github.com/Domenick1991/flightbook/internal/repository"
	"github.com/Domenick1991/flightbook/internal/service/booking"
	"github.com/Domenick1991/flightbook/internal/service/flights"
	"github.com/Domenick1991/flightbook/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	grpchealth "google.golang.org/grpc/health"
)

func main() {
	// .env is optional outside local development.
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
	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatalf("load timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gormDB, err := repository.OpenGorm(pool)
	if err != nil {
		log.Fatalf("open gorm: %v", err)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logr)
	defer producer.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(gormDB)

	flightService := flights.NewFlightService(flightRepo, redisCache, logr)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		store,
		logr,
		booking.WithCache(redisCache, time.Duration(cfg.Booking.LockTTLSeconds)*time.Second),
		booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithMetrics(m),
	)
	userService := users.NewUserService(userRepo, auth.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, logr)

	healthSrv := grpchealth.NewServer()
	monitor := health.NewMonitor(healthSrv, 3*time.Second, logr)
	monitor.Register("postgres", store.Ping)
	monitor.Register("redis", redisCache.Ping)
	monitor.Register("kafka", producer.CheckConnection)
	go monitor.Run(ctx, time.Duration(cfg.Worker.HealthCheckSeconds)*time.Second)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.RouterDeps{
		Flights:     flightService,
		Bookings:    bookingService,
		Users:       userService,
		Gate:        auth.NewGate(tokens),
		Metrics:     m,
		Logger:      logr,
		Location:    loc,
		SwaggerDir:  cfg.HTTP.SwaggerDir,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	if err := bootstrap.Run(ctx, cfg, router, healthSrv, logr); err != nil {
		logr.Error("server error", "error", err)
		os.Exit(1)
	}
}
