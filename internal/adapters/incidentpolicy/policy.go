// Package incidentpolicy supplies incident window boundaries. The booking
// core treats the boundaries as opaque; this default policy opens the window
// at the start of the reserved day and closes it a configurable grace period
// after the block ends.
package incidentpolicy

import (
	"time"

	"campusbooking/internal/domain/booking"
	"campusbooking/internal/domain/incident"
	"campusbooking/internal/domain/space"
	"campusbooking/internal/domain/timeslot"
)

// DefaultGrace is how long after the block end incidents stay reportable.
const DefaultGrace = 48 * time.Hour

// DayPolicy derives [start of reserved day, block end + grace).
type DayPolicy struct {
	Grace time.Duration
}

// NewDayPolicy creates a DayPolicy; a non-positive grace falls back to
// DefaultGrace.
func NewDayPolicy(grace time.Duration) DayPolicy {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return DayPolicy{Grace: grace}
}

// WindowFor computes the incident window of an approved reservation. When the
// block's end time cannot be parsed the block is assumed to run to the end of
// its day, so the window never comes out shorter than intended.
// PRE: r.Date is a calendar date (midnight)
// POST: Returns a window with ClosesAt after OpensAt
func (p DayPolicy) WindowFor(r booking.Reservation, block space.ScheduleBlock) (incident.Window, error) {
	opensAt := timeslot.Midnight(r.Date)

	blockEnd := opensAt.Add(24 * time.Hour)
	if minutes, err := timeslot.ParseClock(block.EndTime); err == nil {
		blockEnd = opensAt.Add(time.Duration(minutes) * time.Minute)
	}

	window := incident.Window{
		ReservationID: r.ID,
		OpensAt:       opensAt,
		ClosesAt:      blockEnd.Add(p.Grace),
	}
	if err := window.Validate(); err != nil {
		return incident.Window{}, err
	}
	return window, nil
}
