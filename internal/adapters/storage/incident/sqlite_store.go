package incident

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusbooking/internal/adapters/storage"
	domain "campusbooking/internal/domain/incident"
)

const timestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

// WindowSQLiteStore implements WindowStore using SQLite.
type WindowSQLiteStore struct {
	db storage.SQLDB
}

// NewWindowSQLiteStore creates a new incident window store.
func NewWindowSQLiteStore(db storage.SQLDB) *WindowSQLiteStore {
	return &WindowSQLiteStore{db: db}
}

// Compile-time check that WindowSQLiteStore implements WindowStore.
var _ WindowStore = (*WindowSQLiteStore)(nil)

// Save persists an incident window.
// PRE: value has been validated
// POST: Window is persisted (insert or update)
func (s *WindowSQLiteStore) Save(ctx context.Context, value domain.Window) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO incident_window (reservation_id, opens_at, closes_at) VALUES (?, ?, ?)
		 ON CONFLICT(reservation_id) DO UPDATE SET opens_at=excluded.opens_at, closes_at=excluded.closes_at`,
		value.ReservationID, value.OpensAt.Format(timestampLayout), value.ClosesAt.Format(timestampLayout),
	)
	return err
}

// GetByReservation retrieves the window of a reservation.
// PRE: reservationID is non-empty
// POST: Returns the window, or domain.ErrWindowNotFound
func (s *WindowSQLiteStore) GetByReservation(ctx context.Context, reservationID string) (domain.Window, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT reservation_id, opens_at, closes_at FROM incident_window WHERE reservation_id = ?", reservationID)
	var entity domain.Window
	var opensAt, closesAt string
	err := row.Scan(&entity.ReservationID, &opensAt, &closesAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Window{}, fmt.Errorf("%w: %s", domain.ErrWindowNotFound, reservationID)
	}
	if err != nil {
		return domain.Window{}, err
	}
	if entity.OpensAt, err = time.Parse(timestampLayout, opensAt); err != nil {
		return domain.Window{}, err
	}
	if entity.ClosesAt, err = time.Parse(timestampLayout, closesAt); err != nil {
		return domain.Window{}, err
	}
	return entity, nil
}

// ReportSQLiteStore implements ReportStore using SQLite.
type ReportSQLiteStore struct {
	db storage.SQLDB
}

// NewReportSQLiteStore creates a new incident report store.
func NewReportSQLiteStore(db storage.SQLDB) *ReportSQLiteStore {
	return &ReportSQLiteStore{db: db}
}

// Compile-time check that ReportSQLiteStore implements ReportStore.
var _ ReportStore = (*ReportSQLiteStore)(nil)

// Save persists an incident report.
// PRE: value has been validated
// POST: Report is persisted
func (s *ReportSQLiteStore) Save(ctx context.Context, value domain.Report) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO incident_report (id, reservation_id, reporter_id, description, created_at) VALUES (?, ?, ?, ?, ?)",
		value.ID, value.ReservationID, value.ReporterID, value.Description, value.CreatedAt.Format(timestampLayout),
	)
	return err
}

// ListByReservation retrieves all reports against a reservation, oldest first.
// PRE: reservationID is non-empty
// POST: Returns the reservation's reports
func (s *ReportSQLiteStore) ListByReservation(ctx context.Context, reservationID string) ([]domain.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, reservation_id, reporter_id, description, created_at FROM incident_report WHERE reservation_id = ? ORDER BY created_at",
		reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Report
	for rows.Next() {
		var entity domain.Report
		var createdAt string
		if err := rows.Scan(&entity.ID, &entity.ReservationID, &entity.ReporterID, &entity.Description, &createdAt); err != nil {
			return nil, err
		}
		if entity.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
