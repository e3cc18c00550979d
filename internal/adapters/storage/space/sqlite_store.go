package space

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campusbooking/internal/adapters/storage"
	domain "campusbooking/internal/domain/space"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SpaceStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// GetByID retrieves a Space by its ID.
// PRE: id is non-empty
// POST: Returns the entity, or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Space, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, code, name, type, capacity, school_id, status FROM space WHERE id = ?", id)
	var entity domain.Space
	err := row.Scan(&entity.ID, &entity.Code, &entity.Name, &entity.Type, &entity.Capacity, &entity.SchoolID, &entity.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Space{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return entity, err
}

// Save persists a Space to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Space) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO space (id, code, name, type, capacity, school_id, status) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET code=excluded.code, name=excluded.name, type=excluded.type,
		 capacity=excluded.capacity, school_id=excluded.school_id, status=excluded.status`,
		entity.ID, entity.Code, entity.Name, entity.Type, entity.Capacity, entity.SchoolID, entity.Status,
	)
	return err
}

// List retrieves Spaces, optionally restricted to a school.
// PRE: schoolID is "" for an unrestricted listing
// POST: Returns matching spaces ordered by code
func (s *SQLiteStore) List(ctx context.Context, schoolID string) ([]domain.Space, error) {
	query := "SELECT id, code, name, type, capacity, school_id, status FROM space"
	args := []any{}
	if schoolID != "" {
		query += " WHERE school_id = ?"
		args = append(args, schoolID)
	}
	query += " ORDER BY code"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Space
	for rows.Next() {
		var entity domain.Space
		if err := rows.Scan(&entity.ID, &entity.Code, &entity.Name, &entity.Type, &entity.Capacity, &entity.SchoolID, &entity.Status); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// GetBlock retrieves a ScheduleBlock by its ID.
// PRE: blockID is non-empty
// POST: Returns the block, or domain.ErrNotFound
func (s *SQLiteStore) GetBlock(ctx context.Context, blockID string) (domain.ScheduleBlock, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, space_id, label, start_time, end_time FROM schedule_block WHERE id = ?", blockID)
	var entity domain.ScheduleBlock
	err := row.Scan(&entity.ID, &entity.SpaceID, &entity.Label, &entity.StartTime, &entity.EndTime)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScheduleBlock{}, fmt.Errorf("%w: block %s", domain.ErrNotFound, blockID)
	}
	return entity, err
}

// SaveBlock persists a ScheduleBlock to the database.
// PRE: entity has been validated
// POST: Block is persisted (insert or update)
func (s *SQLiteStore) SaveBlock(ctx context.Context, entity domain.ScheduleBlock) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_block (id, space_id, label, start_time, end_time) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET space_id=excluded.space_id, label=excluded.label,
		 start_time=excluded.start_time, end_time=excluded.end_time`,
		entity.ID, entity.SpaceID, entity.Label, entity.StartTime, entity.EndTime,
	)
	return err
}

// ListBlocks retrieves the ScheduleBlocks of a space ordered by block ID, so
// availability output is identically ordered for identical inputs.
// PRE: spaceID is non-empty
// POST: Returns the space's blocks in ascending ID order
func (s *SQLiteStore) ListBlocks(ctx context.Context, spaceID string) ([]domain.ScheduleBlock, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, space_id, label, start_time, end_time FROM schedule_block WHERE space_id = ? ORDER BY id", spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ScheduleBlock
	for rows.Next() {
		var entity domain.ScheduleBlock
		if err := rows.Scan(&entity.ID, &entity.SpaceID, &entity.Label, &entity.StartTime, &entity.EndTime); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
