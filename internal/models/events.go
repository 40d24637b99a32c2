package models

import "time"

// NATS subjects for order lifecycle events
const (
	EventOrderCreated   = "order.created"
	EventOrderCancelled = "order.cancelled"
	EventOrderDeleted   = "order.deleted"
)

// OrderCreatedEvent is published after an order commits.
type OrderCreatedEvent struct {
	OrderID    string    `json:"order_id"`
	TripID     string    `json:"trip_id"`
	UserID     string    `json:"user_id"`
	SeatsCount int       `json:"seats_count"`
	TotalPrice int64     `json:"total_price"`
	ViaStripe  bool      `json:"via_stripe"`
	Timestamp  time.Time `json:"timestamp"`
}

// OrderCancelledEvent is published after a cancellation commits.
type OrderCancelledEvent struct {
	OrderID    string    `json:"order_id"`
	TripID     string    `json:"trip_id"`
	UserID     string    `json:"user_id"`
	SeatsCount int       `json:"seats_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// OrderDeletedEvent is published after a cancelled order is removed.
type OrderDeletedEvent struct {
	OrderID   string    `json:"order_id"`
	TripID    string    `json:"trip_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}
