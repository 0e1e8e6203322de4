package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Domenick1991/flightbook/internal/auth"
	"github.com/Domenick1991/flightbook/internal/domain"
	"github.com/Domenick1991/flightbook/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	logger  *slog.Logger
}

type createBookingRequest struct {
	FlightID string `json:"flight_id" binding:"required"`
	Seats    int    `json:"seats"`
}

type createBookingResponse struct {
	Success bool            `json:"success"`
	Data    *domain.Booking `json:"data"`
}

func NewBookingHandler(service booking.BookingUseCase, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: service, logger: logger}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, gate *auth.Gate) {
	authed := router.Group("", RequireCapability(gate, auth.CapabilityAuthenticated))
	authed.POST("", h.create)
	authed.GET("/my-bookings", h.mine)
	authed.GET("/:id", h.get)
	authed.PUT("/:id/cancel", h.cancel)

	admin := router.Group("", RequireCapability(gate, auth.CapabilityAdmin))
	admin.GET("/flight/:flightId", h.flightBookings)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	id := identityFrom(c)
	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:   id.UserID,
		Email:    id.Email,
		FlightID: req.FlightID,
		Seats:    req.Seats,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, createBookingResponse{Success: true, Data: created})
}

func (h *BookingHandler) mine(c *gin.Context) {
	result, err := h.service.ListUserBookings(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) get(c *gin.Context) {
	result, err := h.service.GetBooking(c.Request.Context(), requesterFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	if _, err := h.service.CancelBooking(c.Request.Context(), requesterFrom(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled"})
}

func (h *BookingHandler) flightBookings(c *gin.Context) {
	result, err := h.service.ListFlightBookings(c.Request.Context(), c.Param("flightId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
