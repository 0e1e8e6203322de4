package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	FlightID    string        `json:"flight_id"`
	Seats       int           `json:"seats"`
	TotalPrice  int64         `json:"total_price"`
	Status      BookingStatus `json:"status"`
	BookingDate time.Time     `json:"booking_date"`

	// Filled by joined reads only.
	Flight   *FlightSummary `json:"flight,omitempty"`
	UserName string         `json:"user_name,omitempty"`
}

type FlightSummary struct {
	FlightNumber  string    `json:"flight_number"`
	Departure     string    `json:"departure"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Price         int64     `json:"price"`
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}
