package scheduleindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"campusbooking/internal/domain/booking"
	"campusbooking/internal/domain/schedule"
	"campusbooking/internal/domain/space"
	"campusbooking/internal/domain/timeslot"
)

// ErrUpstreamUnavailable signals that the schedule source could not be read.
// Callers must treat this as "occupancy unknown", never as "space free".
var ErrUpstreamUnavailable = errors.New("schedule source unavailable")

// DefaultSnapshotTTL bounds how stale a cached occupancy snapshot may be.
const DefaultSnapshotTTL = 30 * time.Second

// ClaimSource lists the recurring weekly claims of a space.
type ClaimSource interface {
	ListBySpace(ctx context.Context, spaceID string) ([]schedule.WeeklyClaim, error)
}

// ReservationSource lists slot-claiming reservations of a space in a date range.
type ReservationSource interface {
	ListActiveInRange(ctx context.Context, spaceID string, from, to time.Time) ([]booking.Reservation, error)
}

// SpaceSource resolves spaces by ID.
type SpaceSource interface {
	GetByID(ctx context.Context, id string) (space.Space, error)
}

// Index serves per-space occupancy snapshots. A snapshot merges the recurring
// weekly claims with the pending/approved reservations of the current week,
// mapped onto weekdays. Snapshots are cached per space with a short TTL and
// invalidated on every write, so availability reads do not hammer the store.
type Index struct {
	claims       ClaimSource
	reservations ReservationSource
	spaces       SpaceSource
	cache        *gocache.Cache
	now          func() time.Time
}

// New creates an Index with the given sources and snapshot TTL.
// PRE: all sources are non-nil, now is non-nil
// POST: Returns a ready Index with an empty cache
func New(claims ClaimSource, reservations ReservationSource, spaces SpaceSource, ttl time.Duration, now func() time.Time) *Index {
	return &Index{
		claims:       claims,
		reservations: reservations,
		spaces:       spaces,
		cache:        gocache.New(ttl, 2*ttl),
		now:          now,
	}
}

// OccupancyFor returns the occupancy snapshot of a space for the current week.
// The snapshot is all-or-nothing: when any source fails the whole read fails
// with ErrUpstreamUnavailable and nothing partial is cached.
// PRE: spaceID is non-empty
// POST: Returns the snapshot, space.ErrNotFound, or ErrUpstreamUnavailable
func (x *Index) OccupancyFor(ctx context.Context, spaceID string) (schedule.Occupancy, error) {
	if cached, ok := x.cache.Get(spaceID); ok {
		return cached.(schedule.Occupancy), nil
	}

	if _, err := x.spaces.GetByID(ctx, spaceID); err != nil {
		if errors.Is(err, space.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	snapshot, err := x.build(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	x.cache.SetDefault(spaceID, snapshot)
	return snapshot, nil
}

// Invalidate drops the cached snapshot of a space. Called after every write
// that can change the space's occupancy.
func (x *Index) Invalidate(spaceID string) {
	x.cache.Delete(spaceID)
}

func (x *Index) build(ctx context.Context, spaceID string) (schedule.Occupancy, error) {
	occupancy := make(schedule.Occupancy)

	claims, err := x.claims.ListBySpace(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	for _, claim := range claims {
		occupancy.Mark(claim.BlockID, claim.Weekday)
	}

	// Within the booking window (the current week) a date maps to exactly one
	// weekday, so reservations fold into the same weekday grid as claims.
	weekStart, weekEnd := booking.CurrentWeekBounds(x.now())
	reservations, err := x.reservations.ListActiveInRange(ctx, spaceID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	for _, r := range reservations {
		occupancy.Mark(r.BlockID, timeslot.WeekdayIndex(r.Date))
	}

	return occupancy, nil
}
