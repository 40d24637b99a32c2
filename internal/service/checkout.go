package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ruta/internal/apperr"
	"ruta/internal/external"
	"ruta/internal/logger"
	"ruta/internal/models"
	"ruta/internal/policy"
	"ruta/internal/repository"
)

// CheckoutService mediates between the booking core and the hosted payment
// provider. Confirmation reaches it on two independent paths, the
// asynchronous webhook and the synchronous verification poll; both funnel
// through the same idempotent create keyed on the checkout session id.
type CheckoutService struct {
	trips    TripStore
	orders   OrderStore
	booking  *OrderService
	provider CheckoutProvider

	frontendURL string
	rules       policy.Rules
	now         func() time.Time
}

func NewCheckoutService(trips TripStore, orders OrderStore, booking *OrderService, provider CheckoutProvider, opts Options) *CheckoutService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rules := opts.Rules
	if rules.CancelNotice == 0 {
		rules = policy.DefaultRules()
	}
	return &CheckoutService{
		trips:       trips,
		orders:      orders,
		booking:     booking,
		provider:    provider,
		frontendURL: opts.FrontendURL,
		rules:       rules,
		now:         now,
	}
}

// Start validates the booking the same way a direct order would be
// validated, then asks the provider for a hosted checkout page. Validating
// first avoids creating payment sessions for bookings that cannot succeed.
func (s *CheckoutService) Start(ctx context.Context, userID, userEmail, tripID string, seatsCount int) (*models.CheckoutSessionResponse, error) {
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
	if seats > trip.AvailableSeats {
		return nil, apperr.InsufficientCapacity(seats, trip.AvailableSeats)
	}

	// The provider expects the amount in the currency's minor unit.
	amountMinor := trip.Price * int64(seats) * 100

	session, err := s.provider.CreateCheckoutSession(ctx, external.CheckoutSessionParams{
		AmountMinor: amountMinor,
		ProductName: fmt.Sprintf("Bilet %s → %s", trip.StartCity, trip.EndCity),
		Description: fmt.Sprintf("Plecare: %s %s | Sosire: %s %s",
			trip.StartDate, trip.StartTime, trip.EndDate, trip.EndTime),
		SuccessURL:    s.frontendURL + "/my-tickets?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.frontendURL + "/buy/" + tripID,
		CustomerEmail: userEmail,
		Metadata: map[string]string{
			"userId":     userID,
			"userEmail":  userEmail,
			"tripId":     tripID,
			"seatsCount": strconv.Itoa(seats),
		},
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &models.CheckoutSessionResponse{URL: session.URL}, nil
}

// HandleWebhook processes a raw provider callback. Signature failures and
// incomplete metadata reject with a client error; duplicate deliveries are
// acknowledged without creating anything.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.provider.ConstructWebhookEvent(payload, signatureHeader)
	if err != nil {
		if errors.Is(err, external.ErrSignatureVerification) {
			return apperr.BadRequest("webhook signature verification failed")
		}
		return apperr.BadRequest("malformed webhook payload")
	}

	if event.Type != external.EventCheckoutCompleted {
		return nil
	}

	session := &event.Data.Object
	if session.PaymentStatus != external.PaymentStatusPaid {
		return nil
	}

	if session.Metadata["userId"] == "" || session.Metadata["tripId"] == "" {
		logger.WithContext(ctx).Error("Incomplete metadata on paid checkout session",
			"session_id", session.ID)
		return apperr.BadRequest("incomplete checkout session metadata")
	}

	_, created, err := s.confirmSession(ctx, session)
	if err != nil {
		return err
	}
	if !created {
		logger.WithContext(ctx).Info("Order for checkout session already exists",
			"session_id", session.ID)
	}
	return nil
}

// Verify is the synchronous fallback for when the webhook has not arrived
// yet: it polls the provider and, if the session is paid and owned by the
// caller, runs the same idempotent lookup-or-create as the webhook path.
func (s *CheckoutService) Verify(ctx context.Context, sessionID, userID string) (*models.VerifySessionResult, error) {
	if sessionID == "" {
		return nil, apperr.BadRequest("session id is required")
	}

	session, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if session.Metadata["userId"] != userID {
		return nil, apperr.Forbidden("you do not have permission to access this session")
	}

	if session.PaymentStatus != external.PaymentStatusPaid {
		return &models.VerifySessionResult{
			Paid:          false,
			PaymentStatus: session.PaymentStatus,
		}, nil
	}

	if session.Metadata["tripId"] == "" {
		return nil, apperr.BadRequest("incomplete checkout session metadata")
	}

	order, _, err := s.confirmSession(ctx, session)
	if err != nil {
		return nil, err
	}

	trip, err := s.trips.GetByID(ctx, order.TripID)
	if err == nil {
		order.Trip = trip
	}

	return &models.VerifySessionResult{
		Paid:          true,
		PaymentStatus: session.PaymentStatus,
		Order:         order,
	}, nil
}

// confirmSession creates the order for a paid session exactly once. The
// pre-check keeps the common retry path cheap; the unique index on the
// session id closes the remaining race, so a concurrent duplicate insert
// degrades into the lookup path instead of a second order.
func (s *CheckoutService) confirmSession(ctx context.Context, session *external.CheckoutSession) (*models.Order, bool, error) {
	existing, err := s.orders.GetBySessionID(ctx, session.ID)
	if err != nil {
		return nil, false, apperr.Internal(err)
	}
	if existing != nil {
		return existing, false, nil
	}

	seats := 1
	if raw := session.Metadata["seatsCount"]; raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			seats = parsed
		}
	}

	sessionID := session.ID
	order, err := s.booking.Create(ctx,
		session.Metadata["userId"],
		session.Metadata["userEmail"],
		session.Metadata["tripId"],
		seats,
		&sessionID,
	)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSession) {
			existing, lookupErr := s.orders.GetBySessionID(ctx, session.ID)
			if lookupErr != nil {
				return nil, false, apperr.Internal(lookupErr)
			}
			if existing != nil {
				return existing, false, nil
			}
			return nil, false, apperr.Internal(err)
		}
		return nil, false, err
	}

	logger.WithContext(ctx).Info("Order created for checkout session",
		"session_id", session.ID,
		"order_id", order.OrderID)

	return order, true, nil
}
