package flights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/flightbook/internal/domain"
	"github.com/Domenick1991/flightbook/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Create(ctx context.Context, input FlightInput) (*domain.Flight, error)
	Update(ctx context.Context, id string, input FlightInput) (*domain.Flight, error)
	Delete(ctx context.Context, id string) error
	RefreshCache(ctx context.Context) error
}

// FlightCache holds the full inventory list. Every invalidation bumps a
// version; SetFlights is a no-op when the version moved since it was read.
type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	FlightsVersion(ctx context.Context) (int64, error)
	SetFlights(ctx context.Context, flights []domain.Flight, version int64) error
	InvalidateFlights(ctx context.Context) error
}

type FlightInput struct {
	FlightNumber   string
	Departure      string
	Destination    string
	DepartureTime  time.Time
	ArrivalTime    time.Time
	Price          int64
	AvailableSeats int
}

func (in FlightInput) Validate() error {
	switch {
	case strings.TrimSpace(in.FlightNumber) == "":
		return fmt.Errorf("%w: flight_number is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Departure) == "" || strings.TrimSpace(in.Destination) == "":
		return fmt.Errorf("%w: departure and destination are required", domain.ErrInvalidInput)
	case in.DepartureTime.IsZero() || in.ArrivalTime.IsZero():
		return fmt.Errorf("%w: departure_time and arrival_time are required", domain.ErrInvalidInput)
	case in.ArrivalTime.Before(in.DepartureTime):
		return fmt.Errorf("%w: arrival_time is before departure_time", domain.ErrInvalidInput)
	case in.Price < 0:
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	case in.AvailableSeats < 0:
		return fmt.Errorf("%w: available_seats must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func (in FlightInput) toFlight() *domain.Flight {
	return &domain.Flight{
		FlightNumber:   strings.TrimSpace(in.FlightNumber),
		Departure:      strings.TrimSpace(in.Departure),
		Destination:    strings.TrimSpace(in.Destination),
		DepartureTime:  in.DepartureTime,
		ArrivalTime:    in.ArrivalTime,
		Price:          in.Price,
		AvailableSeats: in.AvailableSeats,
		TotalSeats:     in.AvailableSeats,
	}
}

type FlightService struct {
	repo   repository.FlightRepository
	cache  FlightCache
	logger *slog.Logger
}

// NewFlightService builds the inventory service. cache may be nil.
func NewFlightService(repo repository.FlightRepository, cache FlightCache, logger *slog.Logger) *FlightService {
	return &FlightService{repo: repo, cache: cache, logger: logger}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "read flights cache", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	// The version is read before the store so a write that lands after
	// an invalidation is dropped.
	writeBack := s.cache != nil
	var version int64
	if writeBack {
		v, err := s.cache.FlightsVersion(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "read flights cache version", "error", err)
			writeBack = false
		}
		version = v
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if writeBack {
		if err := s.cache.SetFlights(ctx, flights, version); err != nil {
			s.logger.WarnContext(ctx, "write flights cache", "error", err)
		}
	}
	return flights, nil
}

// Search with no criteria is the full inventory.
func (s *FlightService) Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	if filter.IsEmpty() {
		return s.List(ctx)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return []domain.Flight{}, nil
	}
	return s.repo.Search(ctx, filter)
}

func (s *FlightService) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Create(ctx context.Context, input FlightInput) (*domain.Flight, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	flight := input.toFlight()
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) Update(ctx context.Context, id string, input FlightInput) (*domain.Flight, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	flight := input.toFlight()
	flight.ID = id
	ok, err := s.repo.Update(ctx, flight)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrFlightNotFound
	}
	s.invalidate(ctx)
	return nil
}

// RefreshCache reloads the cached inventory from the store.
func (s *FlightService) RefreshCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	version, err := s.cache.FlightsVersion(ctx)
	if err != nil {
		return fmt.Errorf("read flights cache version: %w", err)
	}
	flights, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if err := s.cache.SetFlights(ctx, flights, version); err != nil {
		return fmt.Errorf("write flights cache: %w", err)
	}
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "invalidate flights cache", "error", err)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
