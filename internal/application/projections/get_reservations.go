package projections

import (
	"context"
	"errors"
	"fmt"

	"campusbooking/internal/adapters/storage/reservation"
	domainBooking "campusbooking/internal/domain/booking"
	"campusbooking/internal/domain/scope"
	"campusbooking/internal/domain/timeslot"
)

// GetReservationsQuery carries query parameters. All filters are optional;
// the requester scope is mandatory and decides how far the filters may reach.
type GetReservationsQuery struct {
	Scope    scope.RequesterScope
	SchoolID string
	SpaceID  string
	State    string
	DateFrom string // YYYY-MM-DD, inclusive
	DateTo   string // YYYY-MM-DD, inclusive
}

// GetReservationsResult carries the query result. SummaryCounts is computed
// over exactly the rows the requester may see, so counts never betray records
// outside their scope. Diagnostic is set when a scope problem was converted
// into an empty result.
type GetReservationsResult struct {
	Items         []domainBooking.Reservation
	SummaryCounts map[string]int
	Diagnostic    string
}

// GetReservationsDeps holds dependencies for GetReservations.
type GetReservationsDeps struct {
	ReservationStore ReservationStore
}

// QueryGetReservations lists reservations visible to the requester.
// Administrative staff see everything, supervisors their assigned school,
// professors only their own requests. A filter the scope refuses yields an
// empty result with a diagnostic instead of an error, and never widens.
// PRE: query.Scope has been validated at authentication
// POST: Items and SummaryCounts cover the same scoped row set
func QueryGetReservations(ctx context.Context, query GetReservationsQuery, deps GetReservationsDeps) (GetReservationsResult, error) {
	filter, diagnostic, err := scopedFilter(query)
	if err != nil {
		return GetReservationsResult{}, err
	}
	if diagnostic != "" {
		return GetReservationsResult{SummaryCounts: map[string]int{}, Diagnostic: diagnostic}, nil
	}

	items, err := deps.ReservationStore.List(ctx, filter)
	if err != nil {
		return GetReservationsResult{}, err
	}
	counts, err := deps.ReservationStore.CountByState(ctx, filter)
	if err != nil {
		return GetReservationsResult{}, err
	}

	return GetReservationsResult{Items: items, SummaryCounts: counts}, nil
}

// scopedFilter narrows the client-supplied filters to the requester's scope.
// Scope refusals come back as a diagnostic, not an error: a listing must
// degrade to "nothing to show", while malformed input still fails loudly.
func scopedFilter(query GetReservationsQuery) (reservation.Filter, string, error) {
	filter := reservation.Filter{SpaceID: query.SpaceID}

	if query.State != "" {
		if !isKnownState(query.State) {
			return reservation.Filter{}, "", domainBooking.ErrInvalidStateName
		}
		filter.State = query.State
	}
	if query.DateFrom != "" {
		from, err := timeslot.ParseDate(query.DateFrom)
		if err != nil {
			return reservation.Filter{}, "", fmt.Errorf("%w: %v", domainBooking.ErrInvalidInput, err)
		}
		filter.DateFrom = from
	}
	if query.DateTo != "" {
		to, err := timeslot.ParseDate(query.DateTo)
		if err != nil {
			return reservation.Filter{}, "", fmt.Errorf("%w: %v", domainBooking.ErrInvalidInput, err)
		}
		filter.DateTo = to
	}
	if !filter.DateFrom.IsZero() && !filter.DateTo.IsZero() && filter.DateTo.Before(filter.DateFrom) {
		return reservation.Filter{}, "", domainBooking.ErrInvalidDateRange
	}

	switch query.Scope.Role {
	case scope.RoleProfessor:
		// Professors list their own requests; a school filter is meaningless
		// for them and is dropped rather than refused.
		filter.RequesterID = query.Scope.AccountID
	default:
		schoolID, err := query.Scope.SchoolFilter(query.SchoolID)
		switch {
		case errors.Is(err, scope.ErrForbidden):
			return reservation.Filter{}, "requested school is outside your scope", nil
		case errors.Is(err, scope.ErrMissingAssignment):
			return reservation.Filter{}, "no school assigned to your account", nil
		case err != nil:
			return reservation.Filter{}, "", err
		}
		filter.SchoolID = schoolID
	}

	return filter, "", nil
}

func isKnownState(state string) bool {
	for _, s := range domainBooking.ValidStates {
		if s == state {
			return true
		}
	}
	return false
}
