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

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	DecrementSeats(ctx context.Context, id string, n int) (bool, error)
	IncrementSeats(ctx context.Context, id string, n int) error
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, departure, destination, departure_time, arrival_time, price, available_seats, total_seats, created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Departure, &f.Destination, &f.DepartureTime, &f.ArrivalTime,
		&f.Price, &f.AvailableSeats, &f.TotalSeats, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	return r.Search(ctx, domain.FlightFilter{})
}

func (r *PGFlightRepository) Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	where, args := buildFlightFilter(filter)
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT `+flightColumns+` FROM flights`+where+` ORDER BY departure_time ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrFlightNotFound
	}
	f, err := scanFlight(conn(ctx, r.db).QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("get flight %s: %w", id, err)
	}
	return f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	flight.ID = uuid.NewString()
	if flight.TotalSeats < flight.AvailableSeats {
		flight.TotalSeats = flight.AvailableSeats
	}
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO flights (id, flight_number, departure, destination, departure_time, arrival_time, price, available_seats, total_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		flight.ID, flight.FlightNumber, flight.Departure, flight.Destination, flight.DepartureTime, flight.ArrivalTime,
		flight.Price, flight.AvailableSeats, flight.TotalSeats).
		Scan(&flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create flight: %w", err)
	}
	return nil
}

// Update overwrites every editable field. Capacity only grows: it is raised to
// the new available seat count when that exceeds it.
func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) (bool, error) {
	if _, err := uuid.Parse(flight.ID); err != nil {
		return false, nil
	}
	err := conn(ctx, r.db).QueryRow(ctx, `UPDATE flights
		SET flight_number=$2, departure=$3, destination=$4, departure_time=$5, arrival_time=$6, price=$7,
		    available_seats=$8, total_seats=GREATEST(total_seats, $8), updated_at=now()
		WHERE id=$1
		RETURNING total_seats, created_at, updated_at`,
		flight.ID, flight.FlightNumber, flight.Departure, flight.Destination, flight.DepartureTime, flight.ArrivalTime,
		flight.Price, flight.AvailableSeats).
		Scan(&flight.TotalSeats, &flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("update flight %s: %w", flight.ID, err)
	}
	return true, nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	res, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return false, domain.ErrFlightHasBookings
		}
		return false, fmt.Errorf("delete flight %s: %w", id, err)
	}
	return res.RowsAffected() == 1, nil
}

// DecrementSeats takes n seats in one conditional statement. It reports false
// when the flight does not exist or has fewer than n seats left.
func (r *PGFlightRepository) DecrementSeats(ctx context.Context, id string, n int) (bool, error) {
	res, err := conn(ctx, r.db).Exec(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now()
		WHERE id=$1 AND available_seats >= $2`, id, n)
	if err != nil {
		return false, fmt.Errorf("decrement seats for flight %s: %w", id, err)
	}
	return res.RowsAffected() == 1, nil
}

func (r *PGFlightRepository) IncrementSeats(ctx context.Context, id string, n int) error {
	res, err := conn(ctx, r.db).Exec(ctx, `UPDATE flights SET available_seats = LEAST(available_seats + $2, total_seats), updated_at = now()
		WHERE id=$1`, id, n)
	if err != nil {
		return fmt.Errorf("increment seats for flight %s: %w", id, err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
