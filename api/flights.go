package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightbook/internal/auth"
	"github.com/Domenick1991/flightbook/internal/domain"
	"github.com/Domenick1991/flightbook/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
	loc     *time.Location
	logger  *slog.Logger
}

type flightRequest struct {
	FlightNumber   string `json:"flight_number" binding:"required"`
	Departure      string `json:"departure" binding:"required"`
	Destination    string `json:"destination" binding:"required"`
	DepartureTime  string `json:"departure_time" binding:"required"`
	ArrivalTime    string `json:"arrival_time" binding:"required"`
	Price          *int64 `json:"price" binding:"required"`
	AvailableSeats *int   `json:"available_seats" binding:"required"`
}

type searchQuery struct {
	FlightNumber  string `form:"flight_number"`
	Departure     string `form:"departure"`
	Destination   string `form:"destination"`
	DepartureTime string `form:"departure_time"`
	ArrivalTime   string `form:"arrival_time"`
	MinPrice      string `form:"minPrice"`
	MaxPrice      string `form:"maxPrice"`
}

func NewFlightHandler(service flights.FlightUseCase, loc *time.Location, logger *slog.Logger) *FlightHandler {
	if loc == nil {
		loc = time.Local
	}
	return &FlightHandler{service: service, loc: loc, logger: logger}
}

func (h *FlightHandler) Register(router *gin.RouterGroup, gate *auth.Gate) {
	router.GET("", h.list)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)

	admin := router.Group("", RequireCapability(gate, auth.CapabilityAdmin))
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

func (h *FlightHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FlightHandler) search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	filter, err := q.toFilter(h.loc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (q searchQuery) toFilter(loc *time.Location) (domain.FlightFilter, error) {
	filter := domain.FlightFilter{
		FlightNumber: q.FlightNumber,
		Departure:    q.Departure,
		Destination:  q.Destination,
	}
	if q.DepartureTime != "" {
		d, err := parseDate(q.DepartureTime, loc)
		if err != nil {
			return filter, err
		}
		filter.DepartureDate = &d
	}
	if q.ArrivalTime != "" {
		d, err := parseDate(q.ArrivalTime, loc)
		if err != nil {
			return filter, err
		}
		filter.ArrivalDate = &d
	}
	var err error
	if filter.MinPrice, err = parsePrice("minPrice", q.MinPrice); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parsePrice("maxPrice", q.MaxPrice); err != nil {
		return filter, err
	}
	return filter, nil
}

func parsePrice(name, value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	price, err := strconv.ParseInt(value, 10, 64)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, name)
	}
	return &price, nil
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	input, ok := h.bindFlight(c)
	if !ok {
		return
	}
	flight, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) update(c *gin.Context) {
	input, ok := h.bindFlight(c)
	if !ok {
		return
	}
	flight, err := h.service.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "flight deleted", "id": id})
}

func (h *FlightHandler) bindFlight(c *gin.Context) (flights.FlightInput, bool) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return flights.FlightInput{}, false
	}
	dep, err := parseTimestamp(req.DepartureTime, h.loc)
	if err != nil {
		respondError(c, h.logger, err)
		return flights.FlightInput{}, false
	}
	arr, err := parseTimestamp(req.ArrivalTime, h.loc)
	if err != nil {
		respondError(c, h.logger, err)
		return flights.FlightInput{}, false
	}
	return flights.FlightInput{
		FlightNumber:   req.FlightNumber,
		Departure:      req.Departure,
		Destination:    req.Destination,
		DepartureTime:  dep,
		ArrivalTime:    arr,
		Price:          *req.Price,
		AvailableSeats: *req.AvailableSeats,
	}, true
}
