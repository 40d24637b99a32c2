// Package policy holds the pure booking-window rules: whether a trip is
// still bookable and whether an order can still be cancelled.
package policy

import (
	"fmt"
	"time"

	"ruta/internal/models"
)

// DefaultCancelNotice is the minimum time before departure at which a
// cancellation is still accepted.
const DefaultCancelNotice = 48 * time.Hour

// DepartureTime combines startDate and startTime into a single local
// instant. A missing or malformed time falls back to midnight; a malformed
// date yields the zero time, which every caller treats as already departed.
func DepartureTime(trip *models.Trip) time.Time {
	date, err := time.ParseInLocation("2006-01-02", trip.StartDate, time.Local)
	if err != nil {
		return time.Time{}
	}
	clock, err := time.Parse("15:04", trip.StartTime)
	if err != nil {
		return date
	}
	return date.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
}

// IsDepartureInFuture reports whether the trip has not departed yet.
func IsDepartureInFuture(trip *models.Trip, now time.Time) bool {
	return DepartureTime(trip).After(now)
}

// Rules bundles the configurable policy parameters.
type Rules struct {
	// CancelNotice is how long before departure cancellations close.
	CancelNotice time.Duration
}

// DefaultRules returns the production defaults (2-day cancellation window).
func DefaultRules() Rules {
	return Rules{CancelNotice: DefaultCancelNotice}
}

// CanCancel reports whether the trip's cancellation window is still open:
// now must be at or before departure minus the notice period.
func (r Rules) CanCancel(trip *models.Trip, now time.Time) bool {
	cutoff := DepartureTime(trip).Add(-r.CancelNotice)
	return !now.After(cutoff)
}

// NoticeDescription renders the notice period for user-facing messages,
// in days when it is a whole number of days.
func (r Rules) NoticeDescription() string {
	if r.CancelNotice%(24*time.Hour) == 0 {
		return fmt.Sprintf("%d days", int(r.CancelNotice/(24*time.Hour)))
	}
	return r.CancelNotice.String()
}
