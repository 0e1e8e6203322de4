package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Domenick1991/flightbook/internal/domain"
	"github.com/Domenick1991/flightbook/internal/kafka"
	"github.com/Domenick1991/flightbook/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, requester Requester, bookingID string) (*domain.Booking, error)
	GetBooking(ctx context.Context, requester Requester, bookingID string) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
	ListFlightBookings(ctx context.Context, flightID string) ([]domain.Booking, error)
}

// TxRunner runs fn as one unit of work against the store.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Cache interface {
	AcquireBookingLock(ctx context.Context, userID, flightID string, ttl time.Duration) (bool, error)
	ReleaseBookingLock(ctx context.Context, userID, flightID string) error
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Recorder interface {
	BookingCreated()
	BookingCancelled()
	BookingFailed(operation, reason string)
}

type CreateBookingInput struct {
	UserID   string
	Email    string
	FlightID string
	Seats    int
}

func (in CreateBookingInput) Validate() error {
	if in.UserID == "" {
		return fmt.Errorf("%w: user is required", domain.ErrInvalidInput)
	}
	if _, err := uuid.Parse(in.FlightID); err != nil {
		return fmt.Errorf("%w: flight_id must be a valid id", domain.ErrInvalidInput)
	}
	if in.Seats <= 0 {
		return fmt.Errorf("%w: seats must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// Requester is the caller on whose behalf a booking is read or changed.
type Requester struct {
	UserID  string
	Email   string
	IsAdmin bool
}

func (r Requester) canAccess(b *domain.Booking) bool {
	return r.IsAdmin || b.UserID == r.UserID
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache, lockTTL time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
		s.lockTTL = lockTTL
	}
}

func WithProducer(producer Producer, eventsTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.eventsTopic = eventsTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithMetrics(recorder Recorder) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = recorder
	}
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	tx                 TxRunner
	logger             *slog.Logger
	cache              Cache
	lockTTL            time.Duration
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	metrics            Recorder
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	tx TxRunner,
	logger *slog.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		flights:  flights,
		tx:       tx,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking reserves seats and records a confirmed booking. The seat
// decrement and the ledger insert commit together or not at all.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	created, err := s.createBooking(ctx, input)
	if err != nil {
		s.recordFailure("create", err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BookingCreated()
	}
	return created, nil
}

func (s *BookingService) createBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		locked, err := s.cache.AcquireBookingLock(ctx, input.UserID, input.FlightID, s.lockTTL)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "booking lock unavailable", "flight_id", input.FlightID, "error", err)
		case !locked:
			return nil, domain.ErrDuplicateBooking
		default:
			defer s.releaseLock(ctx, input.UserID, input.FlightID)
		}
	}

	exists, err := s.bookings.HasActiveBooking(ctx, input.UserID, input.FlightID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateBooking
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if flight.AvailableSeats < input.Seats {
		return nil, domain.ErrInsufficientSeats
	}

	if flight.Price > 0 && int64(input.Seats) > math.MaxInt64/flight.Price {
		return nil, fmt.Errorf("%w: total price out of range", domain.ErrInvalidInput)
	}

	booking := &domain.Booking{
		UserID:     input.UserID,
		FlightID:   flight.ID,
		Seats:      input.Seats,
		TotalPrice: flight.Price * int64(input.Seats),
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		reserved, err := s.flights.DecrementSeats(ctx, flight.ID, input.Seats)
		if err != nil {
			return err
		}
		if !reserved {
			return domain.ErrInsufficientSeats
		}
		return s.bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.bookings.GetByID(ctx, booking.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "reload created booking", "booking_id", booking.ID, "error", err)
		booking.Flight = summarize(flight)
		created = booking
	}

	s.invalidateFlights(ctx)
	s.publish(ctx, kafka.EventBookingCreated, created, input.Email)
	return created, nil
}

// CancelBooking flips a confirmed booking to cancelled and returns its seats.
// Only the owner or an admin may cancel.
func (s *BookingService) CancelBooking(ctx context.Context, requester Requester, bookingID string) (*domain.Booking, error) {
	booking, err := s.cancelBooking(ctx, requester, bookingID)
	if err != nil {
		s.recordFailure("cancel", err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BookingCancelled()
	}
	return booking, nil
}

func (s *BookingService) cancelBooking(ctx context.Context, requester Requester, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !requester.canAccess(booking) {
		return nil, domain.ErrForbidden
	}
	if booking.IsCancelled() {
		return nil, domain.ErrAlreadyCancelled
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		changed, err := s.bookings.SetStatus(ctx, booking.ID, domain.BookingStatusCancelled)
		if err != nil {
			return err
		}
		if !changed {
			return domain.ErrAlreadyCancelled
		}
		return s.flights.IncrementSeats(ctx, booking.FlightID, booking.Seats)
	})
	if err != nil {
		return nil, err
	}
	booking.Status = domain.BookingStatusCancelled

	email := ""
	if booking.UserID == requester.UserID {
		email = requester.Email
	}
	s.invalidateFlights(ctx)
	s.publish(ctx, kafka.EventBookingCancelled, booking, email)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, requester Requester, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !requester.canAccess(booking) {
		return nil, domain.ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// ListFlightBookings is an admin view; the caller enforces the capability.
func (s *BookingService) ListFlightBookings(ctx context.Context, flightID string) ([]domain.Booking, error) {
	return s.bookings.ListByFlight(ctx, flightID)
}

func (s *BookingService) releaseLock(ctx context.Context, userID, flightID string) {
	if err := s.cache.ReleaseBookingLock(context.WithoutCancel(ctx), userID, flightID); err != nil {
		s.logger.WarnContext(ctx, "release booking lock", "flight_id", flightID, "error", err)
	}
}

func (s *BookingService) invalidateFlights(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.logger.WarnContext(ctx, "invalidate flights cache", "error", err)
	}
}

// publish never fails the operation; the booking is already committed.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, email string) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking, email)
	if err := s.producer.Publish(ctx, s.eventsTopic, booking.ID, event); err != nil {
		s.logger.WarnContext(ctx, "publish booking event", "type", eventType, "booking_id", booking.ID, "error", err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			s.logger.WarnContext(ctx, "publish booking notification", "type", eventType, "booking_id", booking.ID, "error", err)
		}
	}
}

func (s *BookingService) recordFailure(operation string, err error) {
	if s.metrics != nil {
		s.metrics.BookingFailed(operation, FailureReason(err))
	}
}

// FailureReason gives a stable label for a booking error.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrDuplicateBooking):
		return "duplicate"
	case errors.Is(err, domain.ErrFlightNotFound):
		return "flight_not_found"
	case errors.Is(err, domain.ErrBookingNotFound):
		return "booking_not_found"
	case errors.Is(err, domain.ErrInsufficientSeats):
		return "insufficient_seats"
	case errors.Is(err, domain.ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "storage"
	}
}

func summarize(f *domain.Flight) *domain.FlightSummary {
	return &domain.FlightSummary{
		FlightNumber:  f.FlightNumber,
		Departure:     f.Departure,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		Price:         f.Price,
	}
}

var _ BookingUseCase = (*BookingService)(nil)
