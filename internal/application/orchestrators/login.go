package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campusbooking/internal/domain/account"
	"campusbooking/internal/domain/audit"
	"campusbooking/internal/domain/scope"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login. Scope is resolved
// here, once, and threaded through every later query and command.
type LoginResult struct {
	AccountID string
	Email     string
	Name      string
	Scope     scope.RequesterScope
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	AuditStore   AuditStoreForOrchestrator
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteLogin validates credentials and resolves the requester scope for
// session creation. Unknown emails and wrong passwords produce the same
// error.
// PRE: Email and password provided by the client
// POST: Returns the resolved scope on success, records the failure otherwise
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	now := deps.Now()
	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now)
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("account_save_failed", "error", err, "account_id", acct.ID, "stage", "failed_login")
		}
		recordAudit(ctx, deps.AuditStore, audit.NewEvent(acct.ID, acct.Role, audit.CategorySecurity, audit.ActionLogin).
			WithSeverity(audit.SeverityWarning).
			WithMessage("failed login attempt", ""))
		slog.Info("auth_event", "event", "login_failed", "email", input.Email,
			"reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	acct.RecordSuccessfulLogin()
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		slog.Error("account_save_failed", "error", err, "account_id", acct.ID, "stage", "counter_reset")
	}

	recordAudit(ctx, deps.AuditStore, audit.NewEvent(acct.ID, acct.Role, audit.CategorySecurity, audit.ActionLogin).
		WithMessage("login", ""))
	slog.Info("auth_event", "event", "login_success", "email", input.Email, "role", acct.Role)

	return LoginResult{
		AccountID: acct.ID,
		Email:     acct.Email,
		Name:      acct.Name,
		Scope:     acct.Scope(),
	}, nil
}
