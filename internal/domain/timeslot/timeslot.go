package timeslot

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates. Dates are timezone-naive:
// a reservation for "2026-03-02" means that calendar day wherever the campus is.
const DateLayout = "2006-01-02"

// ClockLayout is the wire format for times of day, minute resolution.
const ClockLayout = "15:04"

// Weekday indices, 0 = Sunday … 6 = Saturday. Matches time.Weekday so the
// index is deterministic and locale-independent.
const (
	Sunday    = 0
	Monday    = 1
	Tuesday   = 2
	Wednesday = 3
	Thursday  = 4
	Friday    = 5
	Saturday  = 6
)

// Domain errors
var (
	ErrInvalidClock = errors.New("time must be in HH:MM format")
	ErrInvalidDate  = errors.New("date must be in YYYY-MM-DD format")
)

// ParseClock parses an "HH:MM" string into a minute-of-day value (0–1439).
// PRE: s is expected in HH:MM format
// POST: Returns minutes since midnight, or ErrInvalidClock
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders a minute-of-day value as "HH:MM".
// PRE: minutes is in [0, 1440)
// POST: Returns the HH:MM representation
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a "YYYY-MM-DD" string into a date at midnight UTC.
// PRE: s is expected in YYYY-MM-DD format
// POST: Returns the parsed date, or ErrInvalidDate
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders a date as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayIndex returns the weekday of a date as 0=Sunday … 6=Saturday.
func WeekdayIndex(date time.Time) int {
	return int(date.Weekday())
}

// MinuteOfDay returns the minute-of-day for a wall-clock instant.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Midnight truncates an instant to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two instants fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
