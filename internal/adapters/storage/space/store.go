package space

import (
	"context"

	domain "campusbooking/internal/domain/space"
)

// Store persists Space and ScheduleBlock state. Both are catalog-owned and
// read-mostly here; Save methods exist for seeding and administration.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Space, error)
	Save(ctx context.Context, value domain.Space) error
	List(ctx context.Context, schoolID string) ([]domain.Space, error)

	GetBlock(ctx context.Context, blockID string) (domain.ScheduleBlock, error)
	SaveBlock(ctx context.Context, value domain.ScheduleBlock) error
	ListBlocks(ctx context.Context, spaceID string) ([]domain.ScheduleBlock, error)
}
