package audit

import (
	"context"

	domain "campusbooking/internal/domain/audit"
)

// Store defines the interface for audit event persistence. Writes are
// fire-and-forget from the orchestrators' point of view; a failed Save is
// logged but never rolls back the transition that produced the event.
type Store interface {
	Save(ctx context.Context, event domain.Event) error
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)
}

// Filter defines query parameters for listing audit events.
type Filter struct {
	Category   *domain.Category
	Action     *domain.Action
	ActorID    *string
	ResourceID *string
	FromDate   *string
	ToDate     *string
}
