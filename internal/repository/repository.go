package repository

import (
	"errors"
	"fmt"

	"ruta/internal/database"
)

// Repositories aggregates all repositories
type Repositories struct {
	Trips  *TripRepository
	Orders *OrderRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Trips:  NewTripRepository(db),
		Orders: NewOrderRepository(db),
	}
}

// Sentinel errors surfaced by the transactional order operations. The
// service layer translates them into the client-facing error taxonomy.
var (
	ErrTripNotFound     = errors.New("trip not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotConfirmed     = errors.New("order is not in confirmed state")
	ErrDuplicateSession = errors.New("order with this checkout session already exists")
)

// InsufficientSeatsError reports a failed capacity check with both counts.
type InsufficientSeatsError struct {
	Requested int
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("insufficient seats: requested %d, available %d", e.Requested, e.Available)
}
