package reservation

import (
	"context"
	"time"

	domain "campusbooking/internal/domain/booking"
)

// Filter defines query parameters for listing reservations. A zero value
// lists everything; scope narrowing is the caller's responsibility and is
// expressed here as an explicit SchoolID / RequesterID.
type Filter struct {
	SchoolID    string
	RequesterID string
	SpaceID     string
	State       string
	DateFrom    time.Time
	DateTo      time.Time
}

// Store persists Reservation state. Insert and Update are the authoritative
// write path: the (space, block, date) uniqueness over pending/approved
// states is enforced here, and a lost race surfaces as
// booking.ErrSlotConflict.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Reservation, error)
	Insert(ctx context.Context, value domain.Reservation) error
	Update(ctx context.Context, value domain.Reservation) error
	List(ctx context.Context, filter Filter) ([]domain.Reservation, error)
	CountByState(ctx context.Context, filter Filter) (map[string]int, error)

	// ListActiveInRange returns pending/approved reservations for a space
	// with dates in [from, to], for weekly-occupancy merging.
	ListActiveInRange(ctx context.Context, spaceID string, from, to time.Time) ([]domain.Reservation, error)
}
