package incident

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrWindowClosed     = errors.New("incident window is not open")
	ErrWindowNotFound   = errors.New("no incident window for reservation")
	ErrEmptyDescription = errors.New("incident description cannot be empty")
	ErrEmptyReporter    = errors.New("incident reporter ID is required")
	ErrInvalidWindow    = errors.New("incident window must close after it opens")
)

// Window is the interval during which incidents may be reported against an
// approved reservation. Boundaries come from an external policy and are
// treated as opaque here; this core only enforces [OpensAt, ClosesAt)
// semantics. A window exists iff its reservation is approved.
type Window struct {
	ReservationID string
	OpensAt       time.Time
	ClosesAt      time.Time
}

// Validate checks if the Window has valid data.
// PRE: Window struct is populated
// POST: Returns nil if valid, error otherwise
func (w *Window) Validate() error {
	if w.ReservationID == "" {
		return errors.New("window reservation ID is required")
	}
	if !w.ClosesAt.After(w.OpensAt) {
		return ErrInvalidWindow
	}
	return nil
}

// IsOpen reports whether now falls inside [OpensAt, ClosesAt). It is
// recomputed against the wall clock on every query and never cached past
// ClosesAt.
func (w *Window) IsOpen(now time.Time) bool {
	return !now.Before(w.OpensAt) && now.Before(w.ClosesAt)
}

// Report is an incident reported against an approved reservation. Historical
// reports stay readable regardless of window state.
type Report struct {
	ID            string
	ReservationID string
	ReporterID    string
	Description   string
	CreatedAt     time.Time
}

// Validate checks if the Report has valid data.
// PRE: Report struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Report) Validate() error {
	if r.ReservationID == "" {
		return errors.New("report reservation ID is required")
	}
	if strings.TrimSpace(r.ReporterID) == "" {
		return ErrEmptyReporter
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}
