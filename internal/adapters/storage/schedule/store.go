package schedule

import (
	"context"

	domain "campusbooking/internal/domain/schedule"
)

// Store persists WeeklyClaim state.
type Store interface {
	Save(ctx context.Context, value domain.WeeklyClaim) error
	Delete(ctx context.Context, id string) error
	ListBySpace(ctx context.Context, spaceID string) ([]domain.WeeklyClaim, error)
}
