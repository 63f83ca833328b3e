// Package booking holds the date arithmetic behind reservations: inclusive
// day counts, total price, and the booked-date enumeration the date picker
// uses to disable days.
package booking

import (
	"time"

	"rental-marketplace-api/internal/model"
)

// DateRange is an inclusive calendar-day range. A zero bound means no
// selection on that side.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) IsSet() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// Days returns the inclusive day count, so Start == End counts as 1.
// Returns 0 when either bound is missing; negative when End precedes Start.
func (r DateRange) Days() int {
	if !r.IsSet() {
		return 0
	}
	return int(Day(r.End).Sub(Day(r.Start)).Hours()/24) + 1
}

// Overlaps reports whether the two inclusive ranges share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	if !r.IsSet() || !other.IsSet() {
		return false
	}
	return !Day(r.Start).After(Day(other.End)) && !Day(other.Start).After(Day(r.End))
}

// Day truncates t to UTC midnight. All range arithmetic happens on these
// normalized values so timestamps from different zones compare as days.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TotalPrice computes the reservation total for a selected range at a daily
// rate. A full positive range prices at days × rate; an incomplete or
// inverted selection falls back to the bare rate.
func TotalPrice(r DateRange, rate int) int {
	if days := r.Days(); days > 0 {
		return days * rate
	}
	return rate
}

// BookedDates enumerates every calendar date covered by the given
// reservations, both endpoints inclusive. Dates covered by more than one
// reservation appear once per covering reservation; callers only need
// membership, not uniqueness.
func BookedDates(reservations []model.Reservation) []time.Time {
	var out []time.Time
	for _, res := range reservations {
		end := Day(res.EndDate)
		for d := Day(res.StartDate); !d.After(end); d = d.AddDate(0, 0, 1) {
			out = append(out, d)
		}
	}
	return out
}
