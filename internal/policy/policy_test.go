package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ruta/internal/models"
)

func trip(date, clock string) *models.Trip {
	return &models.Trip{
		TripID:    "BUC-CLU-20260901-1",
		StartDate: date,
		StartTime: clock,
	}
}

func TestDepartureTime(t *testing.T) {
	t.Run("combines date and time", func(t *testing.T) {
		got := DepartureTime(trip("2026-09-01", "14:30"))
		want := time.Date(2026, 9, 1, 14, 30, 0, 0, time.Local)
		assert.Equal(t, want, got)
	})

	t.Run("malformed time falls back to midnight", func(t *testing.T) {
		got := DepartureTime(trip("2026-09-01", "bogus"))
		want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)
		assert.Equal(t, want, got)
	})

	t.Run("empty time falls back to midnight", func(t *testing.T) {
		got := DepartureTime(trip("2026-09-01", ""))
		want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)
		assert.Equal(t, want, got)
	})

	t.Run("malformed date yields zero time", func(t *testing.T) {
		assert.True(t, DepartureTime(trip("not-a-date", "14:30")).IsZero())
	})
}

func TestIsDepartureInFuture(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.Local)

	assert.True(t, IsDepartureInFuture(trip("2026-09-01", "12:01"), now))
	assert.False(t, IsDepartureInFuture(trip("2026-09-01", "12:00"), now))
	assert.False(t, IsDepartureInFuture(trip("2026-08-31", "23:59"), now))
	assert.False(t, IsDepartureInFuture(trip("garbage", "12:00"), now))
}

func TestCanCancel(t *testing.T) {
	rules := DefaultRules()
	departure := trip("2026-09-10", "08:00")

	t.Run("well before the cutoff", func(t *testing.T) {
		now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.Local)
		assert.True(t, rules.CanCancel(departure, now))
	})

	t.Run("exactly at the cutoff", func(t *testing.T) {
		now := time.Date(2026, 9, 8, 8, 0, 0, 0, time.Local)
		assert.True(t, rules.CanCancel(departure, now))
	})

	t.Run("one minute past the cutoff", func(t *testing.T) {
		now := time.Date(2026, 9, 8, 8, 1, 0, 0, time.Local)
		assert.False(t, rules.CanCancel(departure, now))
	})

	t.Run("one day before departure", func(t *testing.T) {
		now := time.Date(2026, 9, 9, 8, 0, 0, 0, time.Local)
		assert.False(t, rules.CanCancel(departure, now))
	})

	t.Run("custom notice period", func(t *testing.T) {
		short := Rules{CancelNotice: 2 * time.Hour}
		now := time.Date(2026, 9, 10, 5, 0, 0, 0, time.Local)
		assert.True(t, short.CanCancel(departure, now))
		assert.False(t, rules.CanCancel(departure, now))
	})
}

func TestNoticeDescription(t *testing.T) {
	assert.Equal(t, "2 days", DefaultRules().NoticeDescription())
	assert.Equal(t, "3 days", Rules{CancelNotice: 72 * time.Hour}.NoticeDescription())
	assert.Equal(t, "12h0m0s", Rules{CancelNotice: 12 * time.Hour}.NoticeDescription())
}
