package schedule

import (
	"context"

	"campusbooking/internal/adapters/storage"
	domain "campusbooking/internal/domain/schedule"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new WeeklyClaimStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// Save persists a WeeklyClaim to the database.
// PRE: entity has been validated
// POST: Claim is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.WeeklyClaim) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weekly_claim (id, space_id, block_id, weekday, course_label) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET space_id=excluded.space_id, block_id=excluded.block_id,
		 weekday=excluded.weekday, course_label=excluded.course_label`,
		entity.ID, entity.SpaceID, entity.BlockID, entity.Weekday, entity.CourseLabel,
	)
	return err
}

// Delete removes a WeeklyClaim from the database.
// PRE: id is non-empty
// POST: Claim with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM weekly_claim WHERE id = ?", id)
	return err
}

// ListBySpace retrieves all recurring claims for a space.
// PRE: spaceID is non-empty
// POST: Returns claims ordered by block and weekday
func (s *SQLiteStore) ListBySpace(ctx context.Context, spaceID string) ([]domain.WeeklyClaim, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, space_id, block_id, weekday, course_label FROM weekly_claim WHERE space_id = ? ORDER BY block_id, weekday", spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.WeeklyClaim
	for rows.Next() {
		var entity domain.WeeklyClaim
		if err := rows.Scan(&entity.ID, &entity.SpaceID, &entity.BlockID, &entity.Weekday, &entity.CourseLabel); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
