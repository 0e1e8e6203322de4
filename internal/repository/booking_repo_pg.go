package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbook/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ListByFlight(ctx context.Context, flightID string) ([]domain.Booking, error)
	HasActiveBooking(ctx context.Context, userID, flightID string) (bool, error)
	SetStatus(ctx context.Context, id string, status domain.BookingStatus) (bool, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingWithFlight = `SELECT b.id, b.user_id, b.flight_id, b.seats, b.total_price, b.status, b.booking_date,
		f.flight_number, f.departure, f.destination, f.departure_time, f.arrival_time, f.price
	FROM bookings b
	JOIN flights f ON f.id = b.flight_id`

func scanBookingWithFlight(row pgx.Row) (*domain.Booking, error) {
	var (
		b  domain.Booking
		fs domain.FlightSummary
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.FlightID, &b.Seats, &b.TotalPrice, &b.Status, &b.BookingDate,
		&fs.FlightNumber, &fs.Departure, &fs.Destination, &fs.DepartureTime, &fs.ArrivalTime, &fs.Price); err != nil {
		return nil, err
	}
	b.Flight = &fs
	return &b, nil
}

// Create inserts a confirmed booking. A second confirmed booking for the same
// user and flight violates the partial unique index and yields ErrDuplicateBooking.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.ID = uuid.NewString()
	booking.Status = domain.BookingStatusConfirmed
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO bookings (id, user_id, flight_id, seats, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING booking_date`,
		booking.ID, booking.UserID, booking.FlightID, booking.Seats, booking.TotalPrice, booking.Status).
		Scan(&booking.BookingDate)
	if err != nil {
		switch pgErrCode(err) {
		case pgUniqueViolation:
			return domain.ErrDuplicateBooking
		case pgForeignKeyViolation:
			return domain.ErrFlightNotFound
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrBookingNotFound
	}
	b, err := scanBookingWithFlight(conn(ctx, r.db).QueryRow(ctx, bookingWithFlight+` WHERE b.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := conn(ctx, r.db).Query(ctx, bookingWithFlight+` WHERE b.user_id=$1 ORDER BY b.booking_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for user %s: %w", userID, err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBookingWithFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) ListByFlight(ctx context.Context, flightID string) ([]domain.Booking, error) {
	if _, err := uuid.Parse(flightID); err != nil {
		return []domain.Booking{}, nil
	}
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT b.id, b.user_id, b.flight_id, b.seats, b.total_price, b.status, b.booking_date, u.name
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.flight_id=$1
		ORDER BY b.booking_date DESC`, flightID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for flight %s: %w", flightID, err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.FlightID, &b.Seats, &b.TotalPrice, &b.Status, &b.BookingDate, &b.UserName); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) HasActiveBooking(ctx context.Context, userID, flightID string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM bookings WHERE user_id=$1 AND flight_id=$2 AND status <> $3)`,
		userID, flightID, domain.BookingStatusCancelled).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active booking: %w", err)
	}
	return exists, nil
}

// SetStatus reports whether the row changed. Setting a status the booking
// already has is a no-op that returns false.
func (r *PGBookingRepository) SetStatus(ctx context.Context, id string, status domain.BookingStatus) (bool, error) {
	res, err := conn(ctx, r.db).Exec(ctx, `UPDATE bookings SET status=$2 WHERE id=$1 AND status <> $2`, id, status)
	if err != nil {
		return false, fmt.Errorf("set booking %s status: %w", id, err)
	}
	return res.RowsAffected() == 1, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
