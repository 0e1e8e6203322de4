package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Domenick1991/flightbook/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type errorKind struct {
	target error
	status int
	code   string
}

var errorKinds = []errorKind{
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrDuplicateBooking, http.StatusBadRequest, "duplicate_booking"},
	{domain.ErrInsufficientSeats, http.StatusBadRequest, "insufficient_seats"},
	{domain.ErrAlreadyCancelled, http.StatusBadRequest, "already_cancelled"},
	{domain.ErrEmailTaken, http.StatusBadRequest, "email_taken"},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrFlightNotFound, http.StatusNotFound, "flight_not_found"},
	{domain.ErrBookingNotFound, http.StatusNotFound, "booking_not_found"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{domain.ErrFlightHasBookings, http.StatusConflict, "flight_has_bookings"},
}

func classify(err error) (int, errorResponse) {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.target) {
			msg := err.Error()
			if kind.status == http.StatusUnauthorized {
				msg = kind.target.Error()
			}
			return kind.status, errorResponse{Error: kind.code, Message: msg}
		}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal server error"}
}

// respondError writes the error body and aborts the chain. Storage failures
// are logged with detail and answered with a generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, body)
}
