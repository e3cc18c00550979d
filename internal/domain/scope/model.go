package scope

import (
	"errors"
)

// Requester roles
const (
	RoleAdministrative = "administrative"
	RoleSupervisor     = "supervisor"
	RoleProfessor      = "professor"
)

// ValidRoles contains all valid requester roles.
var ValidRoles = []string{RoleAdministrative, RoleSupervisor, RoleProfessor}

// Domain errors
var (
	// ErrForbidden is returned when a requester's scope does not cover a record
	// or a client-supplied filter. Responses carrying it must never reveal
	// details of the denied record.
	ErrForbidden = errors.New("not permitted")

	// ErrMissingAssignment marks a supervisor with no assigned school. Scoped
	// queries surface it as an empty result plus a diagnostic, never as an
	// unscoped fallback.
	ErrMissingAssignment = errors.New("supervisor has no assigned school")

	ErrInvalidRole = errors.New("role must be one of: administrative, supervisor, professor")
)

// RequesterScope is resolved once at authentication and threaded through every
// query and command. It is never re-derived from profile data at call sites.
type RequesterScope struct {
	AccountID        string
	Role             string
	AssignedSchoolID string // required and meaningful only for supervisors
}

// Validate checks if the RequesterScope has valid data.
// PRE: RequesterScope struct is populated
// POST: Returns nil if valid, error otherwise
func (s RequesterScope) Validate() error {
	if !isValidRole(s.Role) {
		return ErrInvalidRole
	}
	return nil
}

// Unrestricted reports whether the requester sees institution-wide data.
func (s RequesterScope) Unrestricted() bool {
	return s.Role == RoleAdministrative
}

// CanApprove reports whether the requester may decide reservations at all.
func (s RequesterScope) CanApprove() bool {
	return s.Role == RoleAdministrative || s.Role == RoleSupervisor
}

// CoversSchool reports whether the requester may act on records of the given
// school.
func (s RequesterScope) CoversSchool(schoolID string) bool {
	switch s.Role {
	case RoleAdministrative:
		return true
	case RoleSupervisor:
		return s.AssignedSchoolID != "" && s.AssignedSchoolID == schoolID
	default:
		return false
	}
}

// SchoolFilter narrows a client-supplied school filter to the requester's
// scope. Administrative requesters pass the filter through unchanged. A
// supervisor gets their assigned school injected implicitly; an explicit
// filter that disagrees with the assignment is rejected with ErrForbidden
// rather than silently overridden, so a spoofed filter is always visible as a
// refusal. A supervisor without an assignment gets ErrMissingAssignment.
// PRE: scope has been validated
// POST: Returns the effective schoolID filter ("" = unrestricted) or an error
func (s RequesterScope) SchoolFilter(requested string) (string, error) {
	switch s.Role {
	case RoleAdministrative:
		return requested, nil
	case RoleSupervisor:
		if s.AssignedSchoolID == "" {
			return "", ErrMissingAssignment
		}
		if requested != "" && requested != s.AssignedSchoolID {
			return "", ErrForbidden
		}
		return s.AssignedSchoolID, nil
	default:
		return "", ErrForbidden
	}
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
