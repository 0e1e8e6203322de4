package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/flightbook/internal/domain"
	"github.com/google/uuid"
)

// memStore is an in-memory flight inventory and booking ledger with the same
// atomicity as the Postgres implementation: a conditional seat decrement, a
// one-confirmed-booking-per-user-and-flight constraint, and transactions that
// undo their writes on failure.
type memStore struct {
	mu       sync.Mutex
	flights  map[string]*domain.Flight
	bookings map[string]*domain.Booking
	users    map[string]string
}

type undoKey struct{}

type undoLog struct {
	fns []func()
}

func newMemStore() *memStore {
	return &memStore{
		flights:  make(map[string]*domain.Flight),
		bookings: make(map[string]*domain.Booking),
		users:    make(map[string]string),
	}
}

func (m *memStore) addFlight(price int64, seats int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	dep := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	m.flights[id] = &domain.Flight{
		ID: id, FlightNumber: "KE" + id[:4], Departure: "Seoul", Destination: "Jeju",
		DepartureTime: dep, ArrivalTime: dep.Add(time.Hour),
		Price: price, AvailableSeats: seats, TotalSeats: seats,
	}
	return id
}

func (m *memStore) seats(flightID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flights[flightID].AvailableSeats
}

func (m *memStore) setPrice(flightID string, price int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flights[flightID].Price = price
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	log := &undoLog{}
	if err := fn(context.WithValue(ctx, undoKey{}, log)); err != nil {
		m.mu.Lock()
		for i := len(log.fns) - 1; i >= 0; i-- {
			log.fns[i]()
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

// onRollback must be called with m.mu held.
func onRollback(ctx context.Context, fn func()) {
	if log, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		log.fns = append(log.fns, fn)
	}
}

// FlightRepository

func (m *memStore) List(ctx context.Context) ([]domain.Flight, error) {
	return m.Search(ctx, domain.FlightFilter{})
}

func (m *memStore) Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Flight, 0, len(m.flights))
	for _, f := range m.flights {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureTime.Before(out[j].DepartureTime) })
	return out, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[id]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memStore) Create(ctx context.Context, flight *domain.Flight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	flight.ID = uuid.NewString()
	cp := *flight
	m.flights[flight.ID] = &cp
	return nil
}

func (m *memStore) Update(ctx context.Context, flight *domain.Flight) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flights[flight.ID]; !ok {
		return false, nil
	}
	cp := *flight
	m.flights[flight.ID] = &cp
	return true, nil
}

func (m *memStore) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flights[id]; !ok {
		return false, nil
	}
	delete(m.flights, id)
	return true, nil
}

func (m *memStore) DecrementSeats(ctx context.Context, id string, n int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[id]
	if !ok || f.AvailableSeats < n {
		return false, nil
	}
	f.AvailableSeats -= n
	onRollback(ctx, func() { f.AvailableSeats += n })
	return true, nil
}

func (m *memStore) IncrementSeats(ctx context.Context, id string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[id]
	if !ok {
		return domain.ErrFlightNotFound
	}
	before := f.AvailableSeats
	f.AvailableSeats = min(f.AvailableSeats+n, f.TotalSeats)
	onRollback(ctx, func() { f.AvailableSeats = before })
	return nil
}

// BookingRepository, exposed through bookingView so method names do not clash.

type bookingView struct {
	*memStore
}

func (v bookingView) Create(ctx context.Context, booking *domain.Booking) error {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.UserID == booking.UserID && b.FlightID == booking.FlightID && b.Status == domain.BookingStatusConfirmed {
			return domain.ErrDuplicateBooking
		}
	}
	booking.ID = uuid.NewString()
	booking.Status = domain.BookingStatusConfirmed
	booking.BookingDate = time.Now()
	cp := *booking
	m.bookings[booking.ID] = &cp
	onRollback(ctx, func() { delete(m.bookings, booking.ID) })
	return nil
}

func (v bookingView) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	cp := *b
	if f, ok := m.flights[b.FlightID]; ok {
		cp.Flight = summarize(f)
	}
	return &cp, nil
}

func (v bookingView) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (v bookingView) ListByFlight(ctx context.Context, flightID string) ([]domain.Booking, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range m.bookings {
		if b.FlightID == flightID {
			cp := *b
			cp.UserName = m.users[b.UserID]
			out = append(out, cp)
		}
	}
	return out, nil
}

func (v bookingView) HasActiveBooking(ctx context.Context, userID, flightID string) (bool, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.UserID == userID && b.FlightID == flightID && b.Status != domain.BookingStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (v bookingView) SetStatus(ctx context.Context, id string, status domain.BookingStatus) (bool, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status == status {
		return false, nil
	}
	before := b.Status
	b.Status = status
	onRollback(ctx, func() { b.Status = before })
	return true, nil
}

func newMemService(m *memStore) *BookingService {
	return NewBookingService(bookingView{m}, m, m, discard)
}
