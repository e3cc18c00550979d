package school

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campusbooking/internal/adapters/storage"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SchoolStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// GetByID retrieves a School by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (School, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name FROM school WHERE id = ?", id)
	var entity School
	err := row.Scan(&entity.ID, &entity.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return School{}, fmt.Errorf("school not found: %w", err)
	}
	return entity, err
}

// Save persists a School to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity School) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO school (id, name) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name",
		entity.ID, entity.Name,
	)
	return err
}

// List retrieves all Schools ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]School, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM school ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []School
	for rows.Next() {
		var entity School
		if err := rows.Scan(&entity.ID, &entity.Name); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
