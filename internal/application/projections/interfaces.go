package projections

import (
	"context"
	"time"

	"campusbooking/internal/adapters/storage/reservation"
	"campusbooking/internal/adapters/storage/school"
	domainBooking "campusbooking/internal/domain/booking"
	domainIncident "campusbooking/internal/domain/incident"
	domainSchedule "campusbooking/internal/domain/schedule"
	domainSpace "campusbooking/internal/domain/space"
)

// SpaceStore interface for space and schedule-block queries.
type SpaceStore interface {
	GetByID(ctx context.Context, id string) (domainSpace.Space, error)
	List(ctx context.Context, schoolID string) ([]domainSpace.Space, error)
	ListBlocks(ctx context.Context, spaceID string) ([]domainSpace.ScheduleBlock, error)
}

// SchoolStore interface for school queries.
type SchoolStore interface {
	List(ctx context.Context) ([]school.School, error)
}

// ReservationStore interface for reservation queries.
type ReservationStore interface {
	GetByID(ctx context.Context, id string) (domainBooking.Reservation, error)
	List(ctx context.Context, filter reservation.Filter) ([]domainBooking.Reservation, error)
	CountByState(ctx context.Context, filter reservation.Filter) (map[string]int, error)
}

// OccupancyIndex serves per-space weekly occupancy snapshots.
type OccupancyIndex interface {
	OccupancyFor(ctx context.Context, spaceID string) (domainSchedule.Occupancy, error)
}

// IncidentWindowStore interface for incident window queries.
type IncidentWindowStore interface {
	GetByReservation(ctx context.Context, reservationID string) (domainIncident.Window, error)
}

// IncidentReportStore interface for incident report queries.
type IncidentReportStore interface {
	ListByReservation(ctx context.Context, reservationID string) ([]domainIncident.Report, error)
}

// NowFunc supplies wall-clock time so projections stay testable.
type NowFunc func() time.Time
