package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruta/internal/apperr"
	"ruta/internal/models"
)

func validCreateTripRequest() *models.CreateTripRequest {
	return &models.CreateTripRequest{
		TripID:         "BUC-PAR-20261001-1",
		StartCity:      "Bucharest",
		EndCity:        "Paris",
		StartDate:      "2026-10-01",
		StartTime:      "06:00",
		EndDate:        "2026-10-02",
		EndTime:        "10:00",
		DurationHours:  28,
		Price:          180,
		AvailableSeats: 40,
		Stops: []models.Stop{
			{City: "Budapest", StopDurationMinutes: 30},
			{City: "Munich", StopDurationMinutes: 20},
		},
	}
}

func TestTripCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds both seat counters from availableSeats", func(t *testing.T) {
		_, trips, orders := newMemStore()
		svc := NewTripService(trips, orders, nil)

		trip, err := svc.Create(ctx, validCreateTripRequest())
		require.NoError(t, err)
		assert.Equal(t, 40, trip.TotalSeats)
		assert.Equal(t, 40, trip.AvailableSeats)

		got, err := svc.Get(ctx, trip.TripID)
		require.NoError(t, err)
		assert.Equal(t, "Paris", got.EndCity)
	})

	t.Run("rejects invalid payloads", func(t *testing.T) {
		_, trips, orders := newMemStore()
		svc := NewTripService(trips, orders, nil)

		cases := []struct {
			name   string
			mutate func(*models.CreateTripRequest)
		}{
			{"same cities", func(r *models.CreateTripRequest) { r.EndCity = r.StartCity }},
			{"empty start city", func(r *models.CreateTripRequest) { r.StartCity = "  " }},
			{"bad date format", func(r *models.CreateTripRequest) { r.StartDate = "01/10/2026" }},
			{"bad time format", func(r *models.CreateTripRequest) { r.StartTime = "6am" }},
			{"impossible calendar date", func(r *models.CreateTripRequest) { r.StartDate = "2026-13-45" }},
			{"arrival before departure", func(r *models.CreateTripRequest) {
				r.EndDate = "2026-09-30"
			}},
			{"arrival equals departure", func(r *models.CreateTripRequest) {
				r.EndDate = r.StartDate
				r.EndTime = r.StartTime
			}},
			{"duration too short", func(r *models.CreateTripRequest) { r.DurationHours = 0 }},
			{"duration too long", func(r *models.CreateTripRequest) { r.DurationHours = 73 }},
			{"free trip", func(r *models.CreateTripRequest) { r.Price = 0 }},
			{"negative seats", func(r *models.CreateTripRequest) { r.AvailableSeats = -1 }},
			{"stop without city", func(r *models.CreateTripRequest) {
				r.Stops = []models.Stop{{City: " ", StopDurationMinutes: 10}}
			}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				req := validCreateTripRequest()
				tc.mutate(req)
				_, err := svc.Create(ctx, req)
				require.Error(t, err)
				assert.True(t, apperr.IsKind(err, apperr.KindBadRequest), "got %v", err)
			})
		}
	})
}

func TestTripUpdate(t *testing.T) {
	ctx := context.Background()
	_, trips, orders := newMemStore()
	svc := NewTripService(trips, orders, nil)

	created, err := svc.Create(ctx, validCreateTripRequest())
	require.NoError(t, err)

	t.Run("merges only the provided fields", func(t *testing.T) {
		price := int64(220)
		updated, err := svc.Update(ctx, created.TripID, &models.UpdateTripRequest{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, int64(220), updated.Price)
		assert.Equal(t, "Paris", updated.EndCity)
		assert.Equal(t, 40, updated.AvailableSeats)
	})

	t.Run("re-validates the merged trip", func(t *testing.T) {
		same := "Bucharest"
		_, err := svc.Update(ctx, created.TripID, &models.UpdateTripRequest{EndCity: &same})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	})

	t.Run("unknown trip", func(t *testing.T) {
		price := int64(220)
		_, err := svc.Update(ctx, "nope", &models.UpdateTripRequest{Price: &price})
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestTripDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("refused while confirmed orders exist", func(t *testing.T) {
		store, trips, orders := newMemStore(futureTrip())
		tripSvc := NewTripService(trips, orders, nil)
		orderSvc := newOrderService(store, trips, orders, &fakePublisher{})

		created, err := orderSvc.Create(ctx, "user-1", "u1@example.com", "BUC-VIE-20260915-1", 1, nil)
		require.NoError(t, err)

		err = tripSvc.Delete(ctx, "BUC-VIE-20260915-1")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))

		// After cancellation the trip can go.
		_, err = orderSvc.Cancel(ctx, created.OrderID, "user-1")
		require.NoError(t, err)
		assert.NoError(t, tripSvc.Delete(ctx, "BUC-VIE-20260915-1"))
	})

	t.Run("unknown trip", func(t *testing.T) {
		_, trips, orders := newMemStore()
		svc := NewTripService(trips, orders, nil)
		err := svc.Delete(ctx, "nope")
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestTripList(t *testing.T) {
	ctx := context.Background()

	a := futureTrip()
	b := futureTrip()
	b.TripID = "BUC-PAR-20260920-1"
	b.EndCity = "Paris"
	b.StartDate = "2026-09-20"
	_, trips, orders := newMemStore(a, b)
	svc := NewTripService(trips, orders, nil)

	all, err := svc.List(ctx, models.ListTripsQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	toParis, err := svc.List(ctx, models.ListTripsQuery{To: "Paris"})
	require.NoError(t, err)
	require.Len(t, toParis, 1)
	assert.Equal(t, "BUC-PAR-20260920-1", toParis[0].TripID)

	onDate, err := svc.List(ctx, models.ListTripsQuery{Date: "2026-09-15"})
	require.NoError(t, err)
	require.Len(t, onDate, 1)
	assert.Equal(t, "BUC-VIE-20260915-1", onDate[0].TripID)
}
