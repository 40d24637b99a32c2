package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"ruta/internal/apperr"
	"ruta/internal/logger"
	"ruta/internal/models"
	"ruta/internal/repository"
)

var (
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRegex = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// TripService manages the trip catalog and keeps the search index in step
// with it. Seat counters are off limits here: only the reconciler moves
// them.
type TripService struct {
	trips  TripStore
	orders OrderStore
	index  TripIndex
}

func NewTripService(trips TripStore, orders OrderStore, index TripIndex) *TripService {
	return &TripService{
		trips:  trips,
		orders: orders,
		index:  index,
	}
}

// List returns catalog trips. Free-text queries go through the search
// index; equality filters go straight to the store.
func (s *TripService) List(ctx context.Context, q models.ListTripsQuery) ([]models.Trip, error) {
	if q.Query != "" && s.index != nil {
		trips, err := s.index.Search(ctx, q.Query, q.Date, 50)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return trips, nil
	}

	trips, err := s.trips.List(ctx, q.From, q.To, q.Date)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return trips, nil
}

func (s *TripService) Get(ctx context.Context, tripID string) (*models.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if trip == nil {
		return nil, apperr.NotFound("trip not found")
	}
	return trip, nil
}

func (s *TripService) Create(ctx context.Context, req *models.CreateTripRequest) (*models.Trip, error) {
	trip := &models.Trip{
		TripID:         strings.TrimSpace(req.TripID),
		StartCity:      strings.TrimSpace(req.StartCity),
		EndCity:        strings.TrimSpace(req.EndCity),
		StartDate:      strings.TrimSpace(req.StartDate),
		StartTime:      strings.TrimSpace(req.StartTime),
		EndDate:        strings.TrimSpace(req.EndDate),
		EndTime:        strings.TrimSpace(req.EndTime),
		DurationHours:  req.DurationHours,
		Price:          req.Price,
		TotalSeats:     req.AvailableSeats,
		AvailableSeats: req.AvailableSeats,
		Stops:          req.Stops,
		Description:    req.Description,
	}
	if trip.Stops == nil {
		trip.Stops = []models.Stop{}
	}

	if trip.TripID == "" {
		return nil, apperr.BadRequest("trip id is required")
	}
	if trip.AvailableSeats < 0 {
		return nil, apperr.BadRequest("available seats must be >= 0")
	}
	if err := validateTripFields(trip); err != nil {
		return nil, err
	}

	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, apperr.Internal(err)
	}

	s.syncIndex(ctx, trip)
	return trip, nil
}

func (s *TripService) Update(ctx context.Context, tripID string, req *models.UpdateTripRequest) (*models.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if trip == nil {
		return nil, apperr.NotFound("trip not found")
	}

	if req.StartCity != nil {
		trip.StartCity = strings.TrimSpace(*req.StartCity)
	}
	if req.EndCity != nil {
		trip.EndCity = strings.TrimSpace(*req.EndCity)
	}
	if req.StartDate != nil {
		trip.StartDate = strings.TrimSpace(*req.StartDate)
	}
	if req.StartTime != nil {
		trip.StartTime = strings.TrimSpace(*req.StartTime)
	}
	if req.EndDate != nil {
		trip.EndDate = strings.TrimSpace(*req.EndDate)
	}
	if req.EndTime != nil {
		trip.EndTime = strings.TrimSpace(*req.EndTime)
	}
	if req.DurationHours != nil {
		trip.DurationHours = *req.DurationHours
	}
	if req.Price != nil {
		trip.Price = *req.Price
	}
	if req.Stops != nil {
		trip.Stops = req.Stops
	}
	if req.Description != nil {
		trip.Description = req.Description
	}

	if err := validateTripFields(trip); err != nil {
		return nil, err
	}

	if err := s.trips.Update(ctx, trip); err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return nil, apperr.NotFound("trip not found")
		}
		return nil, apperr.Internal(err)
	}

	s.syncIndex(ctx, trip)
	return trip, nil
}

// Delete removes a trip unless confirmed orders still reference it.
func (s *TripService) Delete(ctx context.Context, tripID string) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return apperr.Internal(err)
	}
	if trip == nil {
		return apperr.NotFound("trip not found")
	}

	hasConfirmed, err := s.orders.HasConfirmedForTrip(ctx, tripID)
	if err != nil {
		return apperr.Internal(err)
	}
	if hasConfirmed {
		return apperr.Conflict("trip has active bookings and cannot be deleted")
	}

	if err := s.trips.Delete(ctx, tripID); err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return apperr.NotFound("trip not found")
		}
		return apperr.Internal(err)
	}

	if s.index != nil {
		if err := s.index.DeleteTrip(ctx, tripID); err != nil {
			logger.WithContext(ctx).Error("Failed to remove trip from search index",
				"error", err, "trip_id", tripID)
		}
	}
	return nil
}

func (s *TripService) syncIndex(ctx context.Context, trip *models.Trip) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexTrip(ctx, trip); err != nil {
		logger.WithContext(ctx).Error("Failed to index trip",
			"error", err, "trip_id", trip.TripID)
	}
}

// validateTripFields checks the catalog invariants: well-formed schedule,
// distinct cities, arrival after departure, sane duration/price/stops.
func validateTripFields(trip *models.Trip) error {
	if trip.StartCity == "" {
		return apperr.BadRequest("start city is required")
	}
	if trip.EndCity == "" {
		return apperr.BadRequest("end city is required")
	}
	if trip.StartCity == trip.EndCity {
		return apperr.BadRequest("end city must differ from start city")
	}
	if !dateRegex.MatchString(trip.StartDate) {
		return apperr.BadRequest("start date must be YYYY-MM-DD")
	}
	if !timeRegex.MatchString(trip.StartTime) {
		return apperr.BadRequest("start time must be HH:MM")
	}
	if !dateRegex.MatchString(trip.EndDate) {
		return apperr.BadRequest("end date must be YYYY-MM-DD")
	}
	if !timeRegex.MatchString(trip.EndTime) {
		return apperr.BadRequest("end time must be HH:MM")
	}

	departure, err1 := time.ParseInLocation("2006-01-02 15:04", trip.StartDate+" "+trip.StartTime, time.Local)
	arrival, err2 := time.ParseInLocation("2006-01-02 15:04", trip.EndDate+" "+trip.EndTime, time.Local)
	if err1 != nil || err2 != nil {
		return apperr.BadRequest("departure or arrival is not a valid date/time")
	}
	if !arrival.After(departure) {
		return apperr.BadRequest("arrival must be after departure")
	}

	if trip.DurationHours < 1 || trip.DurationHours > 72 {
		return apperr.BadRequest("duration must be between 1 and 72 hours")
	}
	if trip.Price < 1 {
		return apperr.BadRequest("price must be a positive number")
	}
	for _, stop := range trip.Stops {
		if strings.TrimSpace(stop.City) == "" {
			return apperr.BadRequest("every stop must have a city")
		}
		if stop.StopDurationMinutes < 0 {
			return apperr.BadRequest("stop duration must be >= 0 minutes")
		}
	}

	return nil
}
