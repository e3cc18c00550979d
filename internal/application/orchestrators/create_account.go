package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"campusbooking/internal/domain/account"
	"campusbooking/internal/domain/audit"
	"campusbooking/internal/domain/scope"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// CreateAccountInput carries input for the create account orchestrator.
type CreateAccountInput struct {
	Scope            scope.RequesterScope
	Email            string
	Name             string
	Password         string
	Role             string
	AssignedSchoolID string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	AuditStore   AuditStoreForOrchestrator
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateAccount registers a new account. Only administrative staff may
// create accounts; supervisor accounts must carry their school assignment.
// PRE: input fields are client-supplied and unvalidated
// POST: Account persisted with hashed password, or no side effects
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	if !input.Scope.Unrestricted() {
		return account.Account{}, scope.ErrForbidden
	}

	acct := account.Account{
		ID:               deps.GenerateID(),
		Email:            input.Email,
		Name:             input.Name,
		Role:             input.Role,
		AssignedSchoolID: input.AssignedSchoolID,
		CreatedAt:        deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, err
	}

	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.Scope.AccountID, input.Scope.Role, audit.CategoryAccount, audit.ActionCreate).
		WithResource("account", acct.ID).
		WithMessage("account created", "role="+acct.Role))

	slog.Info("account_event", "event", "account_created", "account_id", acct.ID, "role", acct.Role)
	return acct, nil
}
