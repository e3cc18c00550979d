package account_test

import (
	"errors"
	"testing"
	"time"

	"campusbooking/internal/domain/account"
	"campusbooking/internal/domain/scope"
)

// TestAccount_Validate tests account validation.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		acct    account.Account
		wantErr error
	}{
		{
			name: "valid administrative",
			acct: account.Account{ID: "a-1", Email: "staff@uni.edu", Role: scope.RoleAdministrative},
		},
		{
			name: "valid supervisor with school",
			acct: account.Account{ID: "a-2", Email: "sup@uni.edu", Role: scope.RoleSupervisor, AssignedSchoolID: "sch-7"},
		},
		{
			name: "valid professor",
			acct: account.Account{ID: "a-3", Email: "prof@uni.edu", Role: scope.RoleProfessor},
		},
		{
			name:    "supervisor without school",
			acct:    account.Account{ID: "a-4", Email: "sup2@uni.edu", Role: scope.RoleSupervisor},
			wantErr: account.ErrSupervisorSchool,
		},
		{
			name:    "empty email",
			acct:    account.Account{ID: "a-5", Role: scope.RoleProfessor},
			wantErr: account.ErrEmptyEmail,
		},
		{
			name:    "email without at sign",
			acct:    account.Account{ID: "a-6", Email: "nope", Role: scope.RoleProfessor},
			wantErr: account.ErrInvalidEmail,
		},
		{
			name:    "unknown role",
			acct:    account.Account{ID: "a-7", Email: "x@uni.edu", Role: "dean"},
			wantErr: account.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.acct.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccount_Scope tests RequesterScope resolution.
func TestAccount_Scope(t *testing.T) {
	acct := account.Account{ID: "a-2", Email: "sup@uni.edu", Role: scope.RoleSupervisor, AssignedSchoolID: "sch-7"}
	s := acct.Scope()
	if s.AccountID != "a-2" || s.Role != scope.RoleSupervisor || s.AssignedSchoolID != "sch-7" {
		t.Errorf("unexpected scope: %+v", s)
	}
}

// TestAccount_Password tests bcrypt hashing and verification.
func TestAccount_Password(t *testing.T) {
	var acct account.Account

	if err := acct.SetPassword("short"); !errors.Is(err, account.ErrPasswordTooShort) {
		t.Errorf("error = %v, want ErrPasswordTooShort", err)
	}

	if err := acct.SetPassword("correct horse battery"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := acct.CheckPassword("correct horse battery"); err != nil {
		t.Errorf("expected password to verify: %v", err)
	}
	if err := acct.CheckPassword("wrong password!!"); !errors.Is(err, account.ErrWrongPassword) {
		t.Errorf("error = %v, want ErrWrongPassword", err)
	}
}

// TestAccount_Lockout tests failed-login lockout behaviour.
func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	var acct account.Account

	for i := 0; i < 4; i++ {
		acct.RecordFailedLogin(now)
	}
	if acct.IsLocked(now) {
		t.Error("account should not lock before 5 failures")
	}

	acct.RecordFailedLogin(now)
	if !acct.IsLocked(now) {
		t.Error("account should lock after 5 failures")
	}
	if acct.IsLocked(now.Add(16 * time.Minute)) {
		t.Error("lockout should expire after 15 minutes")
	}

	acct.RecordSuccessfulLogin()
	if acct.IsLocked(now) || acct.FailedLogins != 0 {
		t.Error("successful login should clear lockout state")
	}
}
