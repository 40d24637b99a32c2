package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createTripsTable,
		createOrdersTable,
		createOrdersUserIndex,
		createOrdersSessionIndex,
		createTripsRouteIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createTripsTable = `
CREATE TABLE IF NOT EXISTS trips (
    trip_id VARCHAR(64) PRIMARY KEY,
    start_city VARCHAR(120) NOT NULL,
    end_city VARCHAR(120) NOT NULL,
    start_date VARCHAR(10) NOT NULL,
    start_time VARCHAR(5) NOT NULL,
    end_date VARCHAR(10) NOT NULL,
    end_time VARCHAR(5) NOT NULL,
    duration_hours INTEGER NOT NULL,
    price BIGINT NOT NULL,
    total_seats INTEGER NOT NULL,
    available_seats INTEGER NOT NULL,
    stops JSONB NOT NULL DEFAULT '[]',
    description TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (start_city <> end_city),
    CHECK (duration_hours BETWEEN 1 AND 72),
    CHECK (price > 0),
    CHECK (available_seats >= 0 AND available_seats <= total_seats)
);`

const createOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
    order_id VARCHAR(36) PRIMARY KEY,
    user_id VARCHAR(128) NOT NULL,
    user_email VARCHAR(255) NOT NULL DEFAULT '',
    trip_id VARCHAR(64) NOT NULL,
    seats_count INTEGER NOT NULL,
    total_price BIGINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
    stripe_session_id VARCHAR(255),
    created_at VARCHAR(40) NOT NULL,

    CHECK (seats_count BETWEEN 1 AND 10),
    CHECK (status IN ('confirmed', 'cancelled'))
);`

const createOrdersUserIndex = `
CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id, created_at DESC);`

// The partial unique index is the serialization point for checkout
// idempotency: a second insert with the same session id fails with a
// unique violation instead of producing a duplicate order.
const createOrdersSessionIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS orders_stripe_session_idx
ON orders (stripe_session_id) WHERE stripe_session_id IS NOT NULL;`

const createTripsRouteIndex = `
CREATE INDEX IF NOT EXISTS trips_route_idx ON trips (start_city, end_city, start_date);`
