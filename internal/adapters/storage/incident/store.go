package incident

import (
	"context"

	domain "campusbooking/internal/domain/incident"
)

// WindowStore persists incident windows. A window row exists iff its
// reservation has been approved.
type WindowStore interface {
	Save(ctx context.Context, value domain.Window) error
	GetByReservation(ctx context.Context, reservationID string) (domain.Window, error)
}

// ReportStore persists incident reports. History reads are always permitted
// regardless of window state.
type ReportStore interface {
	Save(ctx context.Context, value domain.Report) error
	ListByReservation(ctx context.Context, reservationID string) ([]domain.Report, error)
}
