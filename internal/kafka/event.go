package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbook/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
)

type BookingEvent struct {
	Type         string    `json:"type"`
	BookingID    string    `json:"booking_id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email,omitempty"`
	FlightID     string    `json:"flight_id"`
	FlightNumber string    `json:"flight_number,omitempty"`
	Seats        int       `json:"seats"`
	TotalPrice   int64     `json:"total_price"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking, email string) BookingEvent {
	event := BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		UserID:     b.UserID,
		Email:      email,
		FlightID:   b.FlightID,
		Seats:      b.Seats,
		TotalPrice: b.TotalPrice,
		Status:     string(b.Status),
		OccurredAt: time.Now().UTC(),
	}
	if b.Flight != nil {
		event.FlightNumber = b.Flight.FlightNumber
	}
	return event
}

func DecodeBookingEvent(msg kafka.Message) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return event, fmt.Errorf("decode booking event at offset %d: %w", msg.Offset, err)
	}
	return event, nil
}
