package api

import (
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/Domenick1991/flightbook/internal/auth"
	"github.com/Domenick1991/flightbook/internal/metrics"
	"github.com/Domenick1991/flightbook/internal/service/booking"
	"github.com/Domenick1991/flightbook/internal/service/flights"
	"github.com/Domenick1991/flightbook/internal/service/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterDeps struct {
	Flights    flights.FlightUseCase
	Bookings   booking.BookingUseCase
	Users      users.UserUseCase
	Gate       *auth.Gate
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Location   *time.Location
	SwaggerDir string
	// Empty or containing "*" allows any origin.
	CORSOrigins []string
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(d.Logger), corsMiddleware(d.CORSOrigins))

	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if d.SwaggerDir != "" {
		router.StaticFile("/docs/openapi.json", filepath.Join(d.SwaggerDir, "openapi.json"))
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/openapi.json"))))
	}

	api := router.Group("/api")
	NewAuthHandler(d.Users, d.Logger).Register(api.Group("/auth"))
	NewFlightHandler(d.Flights, d.Location, d.Logger).Register(api.Group("/flights"), d.Gate)
	NewBookingHandler(d.Bookings, d.Logger).Register(api.Group("/bookings"), d.Gate)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
