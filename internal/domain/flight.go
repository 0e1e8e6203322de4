package domain

import "time"

type Flight struct {
	ID             string    `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	Departure      string    `json:"departure"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Price          int64     `json:"price"`
	AvailableSeats int       `json:"available_seats"`
	TotalSeats     int       `json:"total_seats"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FlightFilter holds optional search criteria. Zero values are ignored and
// the remaining criteria are combined with AND.
type FlightFilter struct {
	FlightNumber string
	Departure    string
	Destination  string
	// DepartureDate and ArrivalDate are the start of a calendar day in the
	// server location; a flight matches when its instant falls inside that day.
	DepartureDate *time.Time
	ArrivalDate   *time.Time
	MinPrice      *int64
	MaxPrice      *int64
}

func (f FlightFilter) IsEmpty() bool {
	return f.FlightNumber == "" && f.Departure == "" && f.Destination == "" &&
		f.DepartureDate == nil && f.ArrivalDate == nil && f.MinPrice == nil && f.MaxPrice == nil
}
