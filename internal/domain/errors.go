package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrFlightNotFound     = errors.New("flight not found")
	ErrFlightHasBookings  = errors.New("flight has bookings")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrDuplicateBooking   = errors.New("flight already booked by user")
	ErrInsufficientSeats  = errors.New("not enough available seats")
	ErrAlreadyCancelled   = errors.New("booking already cancelled")
)
