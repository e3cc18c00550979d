package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"campusbooking/internal/domain/scope"
)

// MaxEmailLength bounds user-supplied email addresses.
const MaxEmailLength = 254

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidRole      = errors.New("role must be one of: administrative, supervisor, professor")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrSupervisorSchool = errors.New("supervisor accounts require an assigned school")
	ErrAccountLocked    = errors.New("account is temporarily locked")
)

// Account is an authenticated identity. The assigned school is meaningful
// only for supervisors and is resolved into a RequesterScope exactly once,
// at login.
type Account struct {
	ID               string
	Email            string
	Name             string
	PasswordHash     string
	Role             string // administrative, supervisor, professor
	AssignedSchoolID string // supervisors only
	CreatedAt        time.Time
	FailedLogins     int
	LockedUntil      time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	valid := false
	for _, r := range scope.ValidRoles {
		if r == a.Role {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidRole
	}
	if a.Role == scope.RoleSupervisor && strings.TrimSpace(a.AssignedSchoolID) == "" {
		return ErrSupervisorSchool
	}
	return nil
}

// Scope resolves the account into the explicit RequesterScope threaded
// through every query and command.
func (a *Account) Scope() scope.RequesterScope {
	return scope.RequesterScope{
		AccountID:        a.ID,
		Role:             a.Role,
		AssignedSchoolID: a.AssignedSchoolID,
	}
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 12 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked reports whether the account is locked out at the given instant.
func (a *Account) IsLocked(now time.Time) bool {
	return !a.LockedUntil.IsZero() && now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failure counter and locks the account for
// 15 minutes after 5 consecutive failures.
// PRE: none
// POST: FailedLogins incremented; LockedUntil set when threshold reached
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= 5 {
		a.LockedUntil = now.Add(15 * time.Minute)
	}
}

// RecordSuccessfulLogin clears the failure counter and lockout.
func (a *Account) RecordSuccessfulLogin() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}
