package repository

import (
	"context"
	"database/sql"
	"errors"

	"ruta/internal/database"
	"ruta/internal/models"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

type OrderRepository struct {
	db *database.DB
}

func NewOrderRepository(db *database.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateConfirmed inserts a confirmed order and decrements the trip's seat
// counter in one transaction. The decrement is a conditional update, so two
// concurrent calls can never jointly oversell: whichever commits second
// sees the reduced counter and fails the WHERE clause.
//
// Returns ErrTripNotFound, *InsufficientSeatsError or ErrDuplicateSession
// when the respective precondition does not hold at commit time.
func (r *OrderRepository) CreateConfirmed(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE trips
		SET available_seats = available_seats - $1
		WHERE trip_id = $2 AND available_seats >= $1`,
		order.SeatsCount, order.TripID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a vanished trip from exhausted capacity.
		var available int
		err := tx.QueryRowContext(ctx,
			`SELECT available_seats FROM trips WHERE trip_id = $1`,
			order.TripID).Scan(&available)
		if err == sql.ErrNoRows {
			return ErrTripNotFound
		}
		if err != nil {
			return err
		}
		return &InsufficientSeatsError{Requested: order.SeatsCount, Available: available}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (order_id, user_id, user_email, trip_id, seats_count, total_price, status, stripe_session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.OrderID,
		order.UserID,
		order.UserEmail,
		order.TripID,
		order.SeatsCount,
		order.TotalPrice,
		order.Status,
		order.StripeSessionID,
		order.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateSession
		}
		return err
	}

	return tx.Commit()
}

// CancelConfirmed flips a confirmed order to cancelled and credits its
// seats back to the trip, atomically. The status guard in the first update
// makes the seat credit happen at most once per order.
func (r *OrderRepository) CancelConfirmed(ctx context.Context, orderID, tripID string, seatsCount int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1
		WHERE order_id = $2 AND status = $3`,
		models.OrderStatusCancelled, orderID, models.OrderStatusConfirmed)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotConfirmed
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE trips SET available_seats = available_seats + $1
		WHERE trip_id = $2`,
		seatsCount, tripID)
	if err != nil {
		return err
	}
	affected, err = res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTripNotFound
	}

	return tx.Commit()
}

// Delete removes an order row. Callers are responsible for the
// cancelled-only rule; the seats were already credited at cancellation.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

const orderColumns = `order_id, user_id, user_email, trip_id, seats_count, total_price, status, stripe_session_id, created_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.OrderID,
		&order.UserID,
		&order.UserEmail,
		&order.TripID,
		&order.SeatsCount,
		&order.TotalPrice,
		&order.Status,
		&order.StripeSessionID,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID)

	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return order, err
}

// GetBySessionID looks an order up by its checkout session id. Used by the
// idempotency check on both the webhook and the verification paths.
func (r *OrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE stripe_session_id = $1 LIMIT 1`, sessionID)

	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return order, err
}

// GetByUserID lists a user's orders, most recent first. The order_id
// tie-break keeps the ordering deterministic for equal timestamps.
func (r *OrderRepository) GetByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, order_id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	return orders, rows.Err()
}

// HasConfirmedForTrip reports whether any confirmed order still references
// the trip. Guards trip deletion.
func (r *OrderRepository) HasConfirmedForTrip(ctx context.Context, tripID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders WHERE trip_id = $1 AND status = $2
		)`, tripID, models.OrderStatusConfirmed).Scan(&exists)
	return exists, err
}
