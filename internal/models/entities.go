package models

import (
	"time"
)

// Order statuses. The transition is one-way: confirmed orders may be
// cancelled, cancelled orders may be deleted. There is no re-confirmation.
const (
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
)

// Stop is an intermediate halt on a trip's route.
type Stop struct {
	City                string `json:"city"`
	StopDurationMinutes int    `json:"stopDurationMinutes"`
}

// Trip represents a scheduled bus trip in the catalog.
//
// AvailableSeats is a live counter kept consistent with confirmed orders:
// it only moves through the order repository's transactional operations.
type Trip struct {
	TripID         string    `json:"tripId" db:"trip_id"`
	StartCity      string    `json:"startCity" db:"start_city"`
	EndCity        string    `json:"endCity" db:"end_city"`
	StartDate      string    `json:"startDate" db:"start_date"`
	StartTime      string    `json:"startTime" db:"start_time"`
	EndDate        string    `json:"endDate" db:"end_date"`
	EndTime        string    `json:"endTime" db:"end_time"`
	DurationHours  int       `json:"durationHours" db:"duration_hours"`
	Price          int64     `json:"price" db:"price"`
	TotalSeats     int       `json:"totalSeats" db:"total_seats"`
	AvailableSeats int       `json:"availableSeats" db:"available_seats"`
	Stops          []Stop    `json:"stops" db:"stops"`
	Description    *string   `json:"description,omitempty" db:"description"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// Order represents a user's seat reservation against a trip.
//
// TotalPrice is a snapshot of trip.Price * SeatsCount at creation time and
// is never recomputed. StripeSessionID is set only for payment-mediated
// orders and doubles as the idempotency key for checkout confirmations.
type Order struct {
	OrderID         string  `json:"orderId" db:"order_id"`
	UserID          string  `json:"userId" db:"user_id"`
	UserEmail       string  `json:"userEmail" db:"user_email"`
	TripID          string  `json:"tripId" db:"trip_id"`
	SeatsCount      int     `json:"seatsCount" db:"seats_count"`
	TotalPrice      int64   `json:"totalPrice" db:"total_price"`
	Status          string  `json:"status" db:"status"`
	StripeSessionID *string `json:"stripeSessionId,omitempty" db:"stripe_session_id"`
	CreatedAt       string  `json:"createdAt" db:"created_at"`

	// Trip is the referenced trip, resolved separately for responses.
	Trip *Trip `json:"trip,omitempty"`
}
