package projections

import (
	"context"
	"errors"

	"campusbooking/internal/adapters/storage/school"
	"campusbooking/internal/domain/scope"
	domainSpace "campusbooking/internal/domain/space"
)

// GetSpacesQuery carries query parameters.
type GetSpacesQuery struct {
	Scope    scope.RequesterScope
	SchoolID string
}

// GetSpacesResult carries the query result. Schools lists the catalog the
// requester may filter by; for supervisors it holds only their own school.
type GetSpacesResult struct {
	Spaces     []domainSpace.Space
	Schools    []school.School
	Diagnostic string
}

// GetSpacesDeps holds dependencies for GetSpaces.
type GetSpacesDeps struct {
	SpaceStore  SpaceStore
	SchoolStore SchoolStore
}

// QueryGetSpaces lists bookable spaces visible to the requester. Professors
// browse the whole catalog (they book anywhere); supervisors and
// administrative staff get the same school narrowing as reservation listings.
// PRE: query.Scope has been validated at authentication
// POST: Returns spaces and the school catalog narrowed to the scope
func QueryGetSpaces(ctx context.Context, query GetSpacesQuery, deps GetSpacesDeps) (GetSpacesResult, error) {
	schoolID := query.SchoolID

	if query.Scope.Role != scope.RoleProfessor {
		narrowed, err := query.Scope.SchoolFilter(query.SchoolID)
		switch {
		case errors.Is(err, scope.ErrForbidden):
			return GetSpacesResult{Diagnostic: "requested school is outside your scope"}, nil
		case errors.Is(err, scope.ErrMissingAssignment):
			return GetSpacesResult{Diagnostic: "no school assigned to your account"}, nil
		case err != nil:
			return GetSpacesResult{}, err
		}
		schoolID = narrowed
	}

	spaces, err := deps.SpaceStore.List(ctx, schoolID)
	if err != nil {
		return GetSpacesResult{}, err
	}

	schools, err := deps.SchoolStore.List(ctx)
	if err != nil {
		return GetSpacesResult{}, err
	}
	if schoolID != "" {
		var visible []school.School
		for _, sc := range schools {
			if sc.ID == schoolID {
				visible = append(visible, sc)
			}
		}
		schools = visible
	}

	return GetSpacesResult{Spaces: spaces, Schools: schools}, nil
}
