package service

import (
	"context"
	"sync"

	"ruta/internal/models"
	"ruta/internal/repository"
)

// memStore is an in-memory stand-in for the Postgres repositories with the
// same atomicity guarantees: the seat-counter change and the order write
// happen under one lock, and a duplicate session id fails the insert.
// memTrips and memOrders are its TripStore and OrderStore views.
type memStore struct {
	mu     sync.Mutex
	trips  map[string]*models.Trip
	orders map[string]*models.Order
}

type memTrips struct{ *memStore }
type memOrders struct{ *memStore }

func newMemStore(trips ...*models.Trip) (*memStore, memTrips, memOrders) {
	s := &memStore{
		trips:  make(map[string]*models.Trip),
		orders: make(map[string]*models.Order),
	}
	for _, trip := range trips {
		cp := *trip
		s.trips[trip.TripID] = &cp
	}
	return s, memTrips{s}, memOrders{s}
}

func (s *memStore) availableSeats(tripID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	trip, ok := s.trips[tripID]
	if !ok {
		return -1
	}
	return trip.AvailableSeats
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) orderBySession(sessionID string) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.StripeSessionID != nil && *order.StripeSessionID == sessionID {
			cp := *order
			return &cp
		}
	}
	return nil
}

// TripStore

func (t memTrips) Create(ctx context.Context, trip *models.Trip) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := *trip
	t.trips[trip.TripID] = &cp
	return nil
}

func (t memTrips) GetByID(ctx context.Context, tripID string) (*models.Trip, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	trip, ok := t.trips[tripID]
	if !ok {
		return nil, nil
	}
	cp := *trip
	return &cp, nil
}

func (t memTrips) List(ctx context.Context, from, to, date string) ([]models.Trip, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []models.Trip
	for _, trip := range t.trips {
		if from != "" && trip.StartCity != from {
			continue
		}
		if to != "" && trip.EndCity != to {
			continue
		}
		if date != "" && trip.StartDate != date {
			continue
		}
		out = append(out, *trip)
	}
	return out, nil
}

func (t memTrips) Update(ctx context.Context, trip *models.Trip) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	existing, ok := t.trips[trip.TripID]
	if !ok {
		return repository.ErrTripNotFound
	}
	cp := *trip
	cp.TotalSeats = existing.TotalSeats
	cp.AvailableSeats = existing.AvailableSeats
	t.trips[trip.TripID] = &cp
	return nil
}

func (t memTrips) Delete(ctx context.Context, tripID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.trips[tripID]; !ok {
		return repository.ErrTripNotFound
	}
	delete(t.trips, tripID)
	return nil
}

// OrderStore

func (o memOrders) CreateConfirmed(ctx context.Context, order *models.Order) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if order.StripeSessionID != nil {
		for _, existing := range o.orders {
			if existing.StripeSessionID != nil && *existing.StripeSessionID == *order.StripeSessionID {
				return repository.ErrDuplicateSession
			}
		}
	}

	trip, ok := o.trips[order.TripID]
	if !ok {
		return repository.ErrTripNotFound
	}
	if trip.AvailableSeats < order.SeatsCount {
		return &repository.InsufficientSeatsError{
			Requested: order.SeatsCount,
			Available: trip.AvailableSeats,
		}
	}

	trip.AvailableSeats -= order.SeatsCount
	cp := *order
	o.orders[order.OrderID] = &cp
	return nil
}

func (o memOrders) CancelConfirmed(ctx context.Context, orderID, tripID string, seatsCount int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	order, ok := o.orders[orderID]
	if !ok || order.Status != models.OrderStatusConfirmed {
		return repository.ErrNotConfirmed
	}
	trip, ok := o.trips[tripID]
	if !ok {
		return repository.ErrTripNotFound
	}

	order.Status = models.OrderStatusCancelled
	trip.AvailableSeats += seatsCount
	return nil
}

func (o memOrders) Delete(ctx context.Context, orderID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.orders[orderID]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(o.orders, orderID)
	return nil
}

func (o memOrders) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	order, ok := o.orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

func (o memOrders) GetBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, order := range o.orders {
		if order.StripeSessionID != nil && *order.StripeSessionID == sessionID {
			cp := *order
			return &cp, nil
		}
	}
	return nil, nil
}

func (o memOrders) GetByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []models.Order
	for _, order := range o.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (o memOrders) HasConfirmedForTrip(ctx context.Context, tripID string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, order := range o.orders {
		if order.TripID == tripID && order.Status == models.OrderStatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *fakePublisher) Publish(subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, subject)
	return nil
}

func (p *fakePublisher) bySubject(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.events {
		if s == subject {
			n++
		}
	}
	return n
}
