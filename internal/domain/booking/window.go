package booking

import (
	"time"

	"campusbooking/internal/domain/timeslot"
)

// CurrentWeekBounds returns the Sunday and Saturday (both at midnight) of the
// week containing now.
// PRE: now is a valid instant
// POST: sunday ≤ now < saturday + 24h; both truncated to midnight
func CurrentWeekBounds(now time.Time) (sunday, saturday time.Time) {
	today := timeslot.Midnight(now)
	sunday = today.AddDate(0, 0, -timeslot.WeekdayIndex(today))
	saturday = sunday.AddDate(0, 0, 6)
	return sunday, saturday
}

// WithinBookingWindow reports whether date may carry a new or edited
// reservation: today ≤ date ≤ Saturday of the current week. The window slides
// with the wall clock, so past days of the current week are already excluded.
// PRE: date is a calendar date (midnight)
// POST: true iff date lies in [today, end of current week]
func WithinBookingWindow(date, now time.Time) bool {
	today := timeslot.Midnight(now)
	_, saturday := CurrentWeekBounds(now)
	d := timeslot.Midnight(date)
	return !d.Before(today) && !d.After(saturday)
}
