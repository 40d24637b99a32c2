package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruta/internal/database"
	"ruta/internal/models"
)

func newMockRepo(t *testing.T) (*OrderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderRepository(&database.DB{DB: db}), mock
}

func confirmedOrder() *models.Order {
	return &models.Order{
		OrderID:    "ord-1",
		UserID:     "user-1",
		UserEmail:  "u1@example.com",
		TripID:     "BUC-VIE-20260915-1",
		SeatsCount: 3,
		TotalPrice: 300,
		Status:     models.OrderStatusConfirmed,
		CreatedAt:  "2026-08-29T12:00:00Z",
	}
}

func TestCreateConfirmed(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements seats and inserts in one transaction", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		order := confirmedOrder()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE trips`).
			WithArgs(order.SeatsCount, order.TripID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO orders`).
			WithArgs(order.OrderID, order.UserID, order.UserEmail, order.TripID,
				order.SeatsCount, order.TotalPrice, order.Status, nil, order.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.CreateConfirmed(ctx, order))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exhausted capacity rolls back with counts", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		order := confirmedOrder()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE trips`).
			WithArgs(order.SeatsCount, order.TripID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT available_seats FROM trips`).
			WithArgs(order.TripID).
			WillReturnRows(sqlmock.NewRows([]string{"available_seats"}).AddRow(2))
		mock.ExpectRollback()

		err := repo.CreateConfirmed(ctx, order)
		require.Error(t, err)

		var insufficient *InsufficientSeatsError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 3, insufficient.Requested)
		assert.Equal(t, 2, insufficient.Available)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vanished trip", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		order := confirmedOrder()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE trips`).
			WithArgs(order.SeatsCount, order.TripID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT available_seats FROM trips`).
			WithArgs(order.TripID).
			WillReturnRows(sqlmock.NewRows([]string{"available_seats"}))
		mock.ExpectRollback()

		err := repo.CreateConfirmed(ctx, order)
		assert.ErrorIs(t, err, ErrTripNotFound)
	})

	t.Run("duplicate session id maps to ErrDuplicateSession", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		order := confirmedOrder()
		session := "cs_dup"
		order.StripeSessionID = &session

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE trips`).
			WithArgs(order.SeatsCount, order.TripID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO orders`).
			WillReturnError(&pq.Error{Code: pqUniqueViolation})
		mock.ExpectRollback()

		err := repo.CreateConfirmed(ctx, order)
		assert.ErrorIs(t, err, ErrDuplicateSession)
	})
}

func TestCancelConfirmed(t *testing.T) {
	ctx := context.Background()

	t.Run("flips status and credits seats", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE orders SET status`).
			WithArgs(models.OrderStatusCancelled, "ord-1", models.OrderStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE trips SET available_seats`).
			WithArgs(3, "BUC-VIE-20260915-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.CancelConfirmed(ctx, "ord-1", "BUC-VIE-20260915-1", 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already cancelled order does not touch the counter", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE orders SET status`).
			WithArgs(models.OrderStatusCancelled, "ord-1", models.OrderStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.CancelConfirmed(ctx, "ord-1", "BUC-VIE-20260915-1", 3)
		assert.ErrorIs(t, err, ErrNotConfirmed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetBySessionID(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepo(t)

	session := "cs_1"
	rows := sqlmock.NewRows([]string{
		"order_id", "user_id", "user_email", "trip_id", "seats_count",
		"total_price", "status", "stripe_session_id", "created_at",
	}).AddRow("ord-1", "user-1", "u1@example.com", "BUC-VIE-20260915-1",
		2, 200, models.OrderStatusConfirmed, session, "2026-08-29T12:00:00Z")

	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE stripe_session_id`).
		WithArgs(session).
		WillReturnRows(rows)

	order, err := repo.GetBySessionID(ctx, session)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "ord-1", order.OrderID)
	require.NotNil(t, order.StripeSessionID)
	assert.Equal(t, session, *order.StripeSessionID)

	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE stripe_session_id`).
		WithArgs("cs_missing").
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))

	order, err = repo.GetBySessionID(ctx, "cs_missing")
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestHasConfirmedForTrip(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("BUC-VIE-20260915-1", models.OrderStatusConfirmed).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.HasConfirmedForTrip(ctx, "BUC-VIE-20260915-1")
	require.NoError(t, err)
	assert.True(t, has)
}
