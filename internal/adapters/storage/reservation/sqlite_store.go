package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusbooking/internal/adapters/storage"
	domain "campusbooking/internal/domain/booking"
	"campusbooking/internal/domain/timeslot"
)

const timestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ReservationStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

const reservationColumns = `id, requester_id, space_id, block_id, course_id, date, description,
	expected_attendance, state, created_at, decided_at, approver_id, decision_reason`

// GetByID retrieves a Reservation by its ID.
// PRE: id is non-empty
// POST: Returns the entity, or booking.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Reservation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservation WHERE id = ?", id)
	entity, err := scanReservation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reservation{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return entity, err
}

// Insert persists a new Reservation. The partial unique index on
// (space_id, block_id, date) over pending/approved states resolves concurrent
// claims of the same slot; the loser gets booking.ErrSlotConflict.
// PRE: entity has been validated
// POST: Entity inserted, or ErrSlotConflict when the slot is already claimed
func (s *SQLiteStore) Insert(ctx context.Context, entity domain.Reservation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reservation (`+reservationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.RequesterID, entity.SpaceID, entity.BlockID, entity.CourseID,
		timeslot.FormatDate(entity.Date), entity.Description, entity.ExpectedAttendance,
		entity.State, entity.CreatedAt.Format(timestampLayout),
		nullableTime(entity.DecidedAt), nullableString(entity.ApproverID), nullableString(entity.DecisionReason),
	)
	return mapConflict(err)
}

// Update persists changes to an existing Reservation. Slot-moving edits hit
// the same unique index as Insert.
// PRE: entity exists and has been validated
// POST: Entity updated, or ErrSlotConflict when the new slot is claimed
func (s *SQLiteStore) Update(ctx context.Context, entity domain.Reservation) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reservation SET requester_id = ?, space_id = ?, block_id = ?, course_id = ?, date = ?,
		 description = ?, expected_attendance = ?, state = ?, decided_at = ?, approver_id = ?, decision_reason = ?
		 WHERE id = ?`,
		entity.RequesterID, entity.SpaceID, entity.BlockID, entity.CourseID, timeslot.FormatDate(entity.Date),
		entity.Description, entity.ExpectedAttendance, entity.State,
		nullableTime(entity.DecidedAt), nullableString(entity.ApproverID), nullableString(entity.DecisionReason),
		entity.ID,
	)
	if err != nil {
		return mapConflict(err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, entity.ID)
	}
	return err
}

// List retrieves reservations matching the filter, newest date first.
// PRE: filter fields are already scope-narrowed by the caller
// POST: Returns matching reservations
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]domain.Reservation, error) {
	query := `SELECT r.id, r.requester_id, r.space_id, r.block_id, r.course_id, r.date, r.description,
		r.expected_attendance, r.state, r.created_at, r.decided_at, r.approver_id, r.decision_reason
		FROM reservation r JOIN space sp ON r.space_id = sp.id WHERE 1=1`
	query, args := applyFilter(query, filter)
	query += " ORDER BY r.date DESC, r.block_id, r.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Reservation
	for rows.Next() {
		entity, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// CountByState returns reservation counts per state under the same filter as
// List, so summary counts never leak rows the requester cannot see.
// PRE: filter fields are already scope-narrowed by the caller
// POST: Returns a state -> count map (absent states count zero)
func (s *SQLiteStore) CountByState(ctx context.Context, filter Filter) (map[string]int, error) {
	query := `SELECT r.state, COUNT(*) FROM reservation r JOIN space sp ON r.space_id = sp.id WHERE 1=1`
	query, args := applyFilter(query, filter)
	query += " GROUP BY r.state"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		counts[state] = n
	}
	return counts, rows.Err()
}

// ListActiveInRange returns pending/approved reservations for a space with
// dates in [from, to].
// PRE: from ≤ to, both calendar dates
// POST: Returns slot-claiming reservations in the range
func (s *SQLiteStore) ListActiveInRange(ctx context.Context, spaceID string, from, to time.Time) ([]domain.Reservation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reservationColumns+` FROM reservation
		 WHERE space_id = ? AND state IN (?, ?) AND date >= ? AND date <= ?
		 ORDER BY date, block_id`,
		spaceID, domain.StatePending, domain.StateApproved,
		timeslot.FormatDate(from), timeslot.FormatDate(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Reservation
	for rows.Next() {
		entity, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// applyFilter appends WHERE clauses for the populated filter fields.
func applyFilter(query string, filter Filter) (string, []any) {
	args := []any{}
	if filter.SchoolID != "" {
		query += " AND sp.school_id = ?"
		args = append(args, filter.SchoolID)
	}
	if filter.RequesterID != "" {
		query += " AND r.requester_id = ?"
		args = append(args, filter.RequesterID)
	}
	if filter.SpaceID != "" {
		query += " AND r.space_id = ?"
		args = append(args, filter.SpaceID)
	}
	if filter.State != "" {
		query += " AND r.state = ?"
		args = append(args, filter.State)
	}
	if !filter.DateFrom.IsZero() {
		query += " AND r.date >= ?"
		args = append(args, timeslot.FormatDate(filter.DateFrom))
	}
	if !filter.DateTo.IsZero() {
		query += " AND r.date <= ?"
		args = append(args, timeslot.FormatDate(filter.DateTo))
	}
	return query, args
}

// mapConflict translates a slot-index UNIQUE violation into ErrSlotConflict.
func mapConflict(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", domain.ErrSlotConflict, err)
	}
	return err
}

func scanReservation(scan func(...any) error) (domain.Reservation, error) {
	var entity domain.Reservation
	var date, createdAt string
	var decidedAt, approverID, reason sql.NullString
	err := scan(&entity.ID, &entity.RequesterID, &entity.SpaceID, &entity.BlockID, &entity.CourseID,
		&date, &entity.Description, &entity.ExpectedAttendance, &entity.State,
		&createdAt, &decidedAt, &approverID, &reason)
	if err != nil {
		return domain.Reservation{}, err
	}
	if entity.Date, err = timeslot.ParseDate(date); err != nil {
		return domain.Reservation{}, err
	}
	if entity.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return domain.Reservation{}, err
	}
	if decidedAt.Valid && decidedAt.String != "" {
		if entity.DecidedAt, err = time.Parse(timestampLayout, decidedAt.String); err != nil {
			return domain.Reservation{}, err
		}
	}
	entity.ApproverID = approverID.String
	entity.DecisionReason = reason.String
	return entity, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(timestampLayout)
}
