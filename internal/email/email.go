package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/flightbook/internal/kafka"
)

// Sender delivers booking notifications. Delivery is a log line; there is no
// mail transport yet.
type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.Email == "" {
		s.logger.WarnContext(ctx, "skip notification without recipient", "booking_id", event.BookingID, "type", event.Type)
		return nil
	}
	s.logger.InfoContext(ctx, "send email",
		"to", event.Email,
		"subject", Subject(event),
		"booking_id", event.BookingID,
		"seats", event.Seats,
	)
	return nil
}

func Subject(event kafka.BookingEvent) string {
	flight := event.FlightNumber
	if flight == "" {
		flight = event.FlightID
	}
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking confirmed: flight %s, %d seat(s)", flight, event.Seats)
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking cancelled: flight %s", flight)
	default:
		return fmt.Sprintf("Booking update: flight %s", flight)
	}
}
