package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS school (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS space (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		school_id TEXT NOT NULL,
		status TEXT NOT NULL,
		FOREIGN KEY (school_id) REFERENCES school(id)
	);

	CREATE TABLE IF NOT EXISTS schedule_block (
		id TEXT PRIMARY KEY,
		space_id TEXT NOT NULL,
		label TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		FOREIGN KEY (space_id) REFERENCES space(id)
	);

	CREATE TABLE IF NOT EXISTS weekly_claim (
		id TEXT PRIMARY KEY,
		space_id TEXT NOT NULL,
		block_id TEXT NOT NULL,
		weekday INTEGER NOT NULL,
		course_label TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (space_id) REFERENCES space(id),
		FOREIGN KEY (block_id) REFERENCES schedule_block(id),
		UNIQUE (space_id, block_id, weekday)
	);

	CREATE TABLE IF NOT EXISTS reservation (
		id TEXT PRIMARY KEY,
		requester_id TEXT NOT NULL,
		space_id TEXT NOT NULL,
		block_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		expected_attendance INTEGER NOT NULL,
		state TEXT NOT NULL,
		created_at TEXT NOT NULL,
		decided_at TEXT,
		approver_id TEXT,
		decision_reason TEXT,
		FOREIGN KEY (space_id) REFERENCES space(id),
		FOREIGN KEY (block_id) REFERENCES schedule_block(id)
	);

	CREATE TABLE IF NOT EXISTS incident_window (
		reservation_id TEXT PRIMARY KEY,
		opens_at TEXT NOT NULL,
		closes_at TEXT NOT NULL,
		FOREIGN KEY (reservation_id) REFERENCES reservation(id)
	);

	CREATE TABLE IF NOT EXISTS incident_report (
		id TEXT PRIMARY KEY,
		reservation_id TEXT NOT NULL,
		reporter_id TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (reservation_id) REFERENCES reservation(id)
	);

	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		assigned_school_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		severity TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		actor_role TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT ''
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Slot uniqueness: at most one pending/approved reservation may claim a
	// given (space, block, date). The store is the single arbiter of booking
	// races; losers surface as a UNIQUE violation mapped to ErrSlotConflict.
	slotIndex := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_reservation_slot
		ON reservation (space_id, block_id, date)
		WHERE state IN ('pending', 'approved');
	`
	if _, err := db.Exec(slotIndex); err != nil {
		return fmt.Errorf("failed to create slot index: %w", err)
	}

	listIndexes := `
	CREATE INDEX IF NOT EXISTS idx_reservation_requester ON reservation (requester_id, date);
	CREATE INDEX IF NOT EXISTS idx_reservation_space_date ON reservation (space_id, date);
	CREATE INDEX IF NOT EXISTS idx_incident_report_reservation ON incident_report (reservation_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_event (timestamp);
	`
	if _, err := db.Exec(listIndexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
