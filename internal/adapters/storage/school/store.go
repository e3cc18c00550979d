package school

import (
	"context"
)

// School is a faculty-level catalog record. Owned by catalog administration;
// the booking core only lists and resolves it for scoping.
type School struct {
	ID   string
	Name string
}

// Store persists School state.
type Store interface {
	GetByID(ctx context.Context, id string) (School, error)
	Save(ctx context.Context, value School) error
	List(ctx context.Context) ([]School, error)
}
