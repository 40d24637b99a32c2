package service

import (
	"context"
	"time"

	"ruta/internal/external"
	"ruta/internal/models"
	"ruta/internal/policy"
	"ruta/internal/repository"
)

// TripStore is the catalog persistence the services depend on.
type TripStore interface {
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, tripID string) (*models.Trip, error)
	List(ctx context.Context, from, to, date string) ([]models.Trip, error)
	Update(ctx context.Context, trip *models.Trip) error
	Delete(ctx context.Context, tripID string) error
}

// OrderStore is the booking persistence. CreateConfirmed and
// CancelConfirmed are transactional: the order write and the seat-counter
// change commit together or not at all.
type OrderStore interface {
	CreateConfirmed(ctx context.Context, order *models.Order) error
	CancelConfirmed(ctx context.Context, orderID, tripID string, seatsCount int) error
	Delete(ctx context.Context, orderID string) error
	GetByID(ctx context.Context, orderID string) (*models.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Order, error)
	HasConfirmedForTrip(ctx context.Context, tripID string) (bool, error)
}

// CheckoutProvider is the external payment provider collaborator.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, params external.CheckoutSessionParams) (*external.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*external.CheckoutSession, error)
	ConstructWebhookEvent(payload []byte, signatureHeader string) (*external.WebhookEvent, error)
}

// TripIndex is the search index kept in sync with the catalog. A nil index
// disables search maintenance.
type TripIndex interface {
	IndexTrip(ctx context.Context, trip *models.Trip) error
	DeleteTrip(ctx context.Context, tripID string) error
	Search(ctx context.Context, query, date string, size int) ([]models.Trip, error)
}

// Publisher emits lifecycle events. Publish failures are logged, never
// propagated. A nil publisher disables events.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// Options carries the cross-cutting service settings.
type Options struct {
	// FrontendURL is the base for checkout success/cancel redirects.
	FrontendURL string
	// Rules are the booking policy parameters.
	Rules policy.Rules
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Services aggregates all services
type Services struct {
	Trips    *TripService
	Orders   *OrderService
	Checkout *CheckoutService
}

func NewServices(repos *repository.Repositories, index TripIndex, publisher Publisher, provider CheckoutProvider, opts Options) *Services {
	orders := NewOrderService(repos.Trips, repos.Orders, publisher, opts)
	return &Services{
		Trips:    NewTripService(repos.Trips, repos.Orders, index),
		Orders:   orders,
		Checkout: NewCheckoutService(repos.Trips, repos.Orders, orders, provider, opts),
	}
}
