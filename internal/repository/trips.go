package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"ruta/internal/database"
	"ruta/internal/models"
)

type TripRepository struct {
	db *database.DB
}

func NewTripRepository(db *database.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = `trip_id, start_city, end_city, start_date, start_time, end_date, end_time,
	duration_hours, price, total_seats, available_seats, stops, description, created_at`

func scanTrip(row interface{ Scan(...interface{}) error }) (*models.Trip, error) {
	trip := &models.Trip{}
	var stops []byte
	err := row.Scan(
		&trip.TripID,
		&trip.StartCity,
		&trip.EndCity,
		&trip.StartDate,
		&trip.StartTime,
		&trip.EndDate,
		&trip.EndTime,
		&trip.DurationHours,
		&trip.Price,
		&trip.TotalSeats,
		&trip.AvailableSeats,
		&stops,
		&trip.Description,
		&trip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stops, &trip.Stops); err != nil {
		return nil, fmt.Errorf("failed to decode stops for trip %s: %w", trip.TripID, err)
	}
	return trip, nil
}

func (r *TripRepository) Create(ctx context.Context, trip *models.Trip) error {
	stops, err := json.Marshal(trip.Stops)
	if err != nil {
		return fmt.Errorf("failed to encode stops: %w", err)
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO trips (trip_id, start_city, end_city, start_date, start_time, end_date, end_time,
			duration_hours, price, total_seats, available_seats, stops, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`,
		trip.TripID,
		trip.StartCity,
		trip.EndCity,
		trip.StartDate,
		trip.StartTime,
		trip.EndDate,
		trip.EndTime,
		trip.DurationHours,
		trip.Price,
		trip.TotalSeats,
		trip.AvailableSeats,
		stops,
		trip.Description,
	).Scan(&trip.CreatedAt)
}

func (r *TripRepository) GetByID(ctx context.Context, tripID string) (*models.Trip, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE trip_id = $1`, tripID)

	trip, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return trip, err
}

// List returns trips matching the optional equality filters, departure date
// ascending.
func (r *TripRepository) List(ctx context.Context, from, to, date string) ([]models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE 1=1`
	var args []interface{}
	argIndex := 1

	if from != "" {
		query += fmt.Sprintf(" AND start_city = $%d", argIndex)
		args = append(args, from)
		argIndex++
	}
	if to != "" {
		query += fmt.Sprintf(" AND end_city = $%d", argIndex)
		args = append(args, to)
		argIndex++
	}
	if date != "" {
		query += fmt.Sprintf(" AND start_date = $%d", argIndex)
		args = append(args, date)
		argIndex++
	}

	query += " ORDER BY start_date, start_time, trip_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
	}

	return trips, rows.Err()
}

// Update rewrites the trip's catalog fields. The seat counters are owned by
// the order operations and deliberately left untouched here.
func (r *TripRepository) Update(ctx context.Context, trip *models.Trip) error {
	stops, err := json.Marshal(trip.Stops)
	if err != nil {
		return fmt.Errorf("failed to encode stops: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE trips
		SET start_city = $1, end_city = $2, start_date = $3, start_time = $4,
		    end_date = $5, end_time = $6, duration_hours = $7, price = $8,
		    stops = $9, description = $10
		WHERE trip_id = $11`,
		trip.StartCity,
		trip.EndCity,
		trip.StartDate,
		trip.StartTime,
		trip.EndDate,
		trip.EndTime,
		trip.DurationHours,
		trip.Price,
		stops,
		trip.Description,
		trip.TripID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTripNotFound
	}
	return nil
}

func (r *TripRepository) Delete(ctx context.Context, tripID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE trip_id = $1`, tripID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTripNotFound
	}
	return nil
}
