package service

import (
	"context"
	"errors"
	"time"

	"ruta/internal/apperr"
	"ruta/internal/logger"
	"ruta/internal/models"
	"ruta/internal/policy"
	"ruta/internal/repository"

	"github.com/google/uuid"
)

// Seat-count bounds per order. Out-of-range requests are clamped, not
// rejected.
const (
	SeatsMin = 1
	SeatsMax = 10
)

// OrderService is the seat-inventory reconciler: it is the only code path
// that moves a trip's availableSeats counter, and it always does so in the
// same transaction as the order write.
type OrderService struct {
	trips     TripStore
	orders    OrderStore
	publisher Publisher
	rules     policy.Rules
	now       func() time.Time
}

func NewOrderService(trips TripStore, orders OrderStore, publisher Publisher, opts Options) *OrderService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rules := opts.Rules
	if rules.CancelNotice == 0 {
		rules = policy.DefaultRules()
	}
	return &OrderService{
		trips:     trips,
		orders:    orders,
		publisher: publisher,
		rules:     rules,
		now:       now,
	}
}

// ClampSeats forces a requested seat count into the allowed range.
func ClampSeats(seatsCount int) int {
	if seatsCount < SeatsMin {
		return SeatsMin
	}
	if seatsCount > SeatsMax {
		return SeatsMax
	}
	return seatsCount
}

// Create books seats on a trip for the given user. It is shared verbatim by
// the direct booking endpoint, the payment webhook and the verification
// fallback; payment-mediated callers pass the checkout session id so the
// order carries the idempotency key.
//
// A duplicate session id surfaces as repository.ErrDuplicateSession, which
// the checkout mediator treats as the idempotent no-op path.
func (s *OrderService) Create(ctx context.Context, userID, userEmail, tripID string, seatsCount int, sessionID *string) (*models.Order, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if trip == nil {
		return nil, apperr.NotFound("trip not found")
	}

	if !policy.IsDepartureInFuture(trip, s.now()) {
		return nil, apperr.InvalidState("cannot book a ticket for a trip that has already departed")
	}

	seats := ClampSeats(seatsCount)

	order := &models.Order{
		OrderID:         uuid.New().String(),
		UserID:          userID,
		UserEmail:       userEmail,
		TripID:          tripID,
		SeatsCount:      seats,
		TotalPrice:      trip.Price * int64(seats),
		Status:          models.OrderStatusConfirmed,
		StripeSessionID: sessionID,
		CreatedAt:       s.now().UTC().Format(time.RFC3339),
	}

	if err := s.orders.CreateConfirmed(ctx, order); err != nil {
		var insufficient *repository.InsufficientSeatsError
		switch {
		case errors.Is(err, repository.ErrTripNotFound):
			return nil, apperr.NotFound("trip not found")
		case errors.As(err, &insufficient):
			return nil, apperr.InsufficientCapacity(insufficient.Requested, insufficient.Available)
		case errors.Is(err, repository.ErrDuplicateSession):
			return nil, err
		default:
			return nil, apperr.Internal(err)
		}
	}

	s.publish(ctx, models.EventOrderCreated, models.OrderCreatedEvent{
		OrderID:    order.OrderID,
		TripID:     order.TripID,
		UserID:     order.UserID,
		SeatsCount: order.SeatsCount,
		TotalPrice: order.TotalPrice,
		ViaStripe:  sessionID != nil,
		Timestamp:  s.now(),
	})

	return order, nil
}

// Get returns a single order, owner only.
func (s *OrderService) Get(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if order == nil {
		return nil, apperr.NotFound("order not found")
	}
	if order.UserID != userID {
		return nil, apperr.Forbidden("you do not have permission to access this order")
	}

	s.attachTrip(ctx, order)
	return order, nil
}

// ListMine returns the user's orders, most recent first, with the
// referenced trips embedded.
func (s *OrderService) ListMine(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	trips := make(map[string]*models.Trip)
	for i := range orders {
		tripID := orders[i].TripID
		trip, seen := trips[tripID]
		if !seen {
			trip, err = s.trips.GetByID(ctx, tripID)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			trips[tripID] = trip
		}
		orders[i].Trip = trip
	}

	return orders, nil
}

// Cancel flips a confirmed order to cancelled and credits the seats back,
// provided the caller owns the order and the cancellation window is still
// open. The seat credit happens exactly once: a second attempt fails the
// status precondition before touching the counter.
func (s *OrderService) Cancel(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if order == nil {
		return nil, apperr.NotFound("order not found")
	}
	if order.UserID != userID {
		return nil, apperr.Forbidden("only the owner of the booking can cancel it")
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, apperr.InvalidState("order is already cancelled")
	}

	trip, err := s.trips.GetByID(ctx, order.TripID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if trip == nil {
		return nil, apperr.NotFound("associated trip not found")
	}

	if !s.rules.CanCancel(trip, s.now()) {
		return nil, apperr.InvalidState("cannot cancel less than %s before departure", s.rules.NoticeDescription())
	}

	if err := s.orders.CancelConfirmed(ctx, order.OrderID, order.TripID, order.SeatsCount); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotConfirmed):
			// Lost a race with another cancellation of the same order.
			return nil, apperr.InvalidState("order is already cancelled")
		case errors.Is(err, repository.ErrTripNotFound):
			return nil, apperr.NotFound("associated trip not found")
		default:
			return nil, apperr.Internal(err)
		}
	}

	s.publish(ctx, models.EventOrderCancelled, models.OrderCancelledEvent{
		OrderID:    order.OrderID,
		TripID:     order.TripID,
		UserID:     order.UserID,
		SeatsCount: order.SeatsCount,
		Timestamp:  s.now(),
	})

	order.Status = models.OrderStatusCancelled
	return order, nil
}

// Delete permanently removes a cancelled order. The seats were already
// credited back at cancellation, so deletion has no inventory effect.
func (s *OrderService) Delete(ctx context.Context, orderID, userID string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return apperr.Internal(err)
	}
	if order == nil {
		return apperr.NotFound("order not found")
	}
	if order.UserID != userID {
		return apperr.Forbidden("only the owner of the booking can delete it")
	}
	if order.Status != models.OrderStatusCancelled {
		return apperr.InvalidState("only cancelled orders can be deleted")
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return apperr.NotFound("order not found")
		}
		return apperr.Internal(err)
	}

	s.publish(ctx, models.EventOrderDeleted, models.OrderDeletedEvent{
		OrderID:   order.OrderID,
		TripID:    order.TripID,
		UserID:    order.UserID,
		Timestamp: s.now(),
	})

	return nil
}

func (s *OrderService) attachTrip(ctx context.Context, order *models.Order) {
	trip, err := s.trips.GetByID(ctx, order.TripID)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to resolve trip for order",
			"error", err,
			"order_id", order.OrderID,
			"trip_id", order.TripID)
		return
	}
	order.Trip = trip
}

func (s *OrderService) publish(ctx context.Context, subject string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish order event",
			"error", err,
			"event_type", subject)
	}
}
