package db

import (
	"database/sql"
	"fmt"
)

// schemaVersion is stored in PRAGMA user_version. On mismatch every table is
// dropped and recreated. The remote store is the disaster-recovery copy, so
// losing the local tables is recoverable via the next reconciliation pass;
// this destructive policy would be unacceptable if this store were the only
// copy of the data.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS medications (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	dosage REAL NOT NULL DEFAULT 0,
	unit TEXT NOT NULL,
	form TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	instructions TEXT NOT NULL DEFAULT '',
	user_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS reminders (
	id TEXT PRIMARY KEY,
	medication_id TEXT NOT NULL DEFAULT '',
	medication_name TEXT NOT NULL,
	dosage REAL NOT NULL DEFAULT 0,
	unit TEXT NOT NULL,
	form TEXT NOT NULL DEFAULT '',
	frequency_mode TEXT NOT NULL DEFAULT 'per_day',
	frequency INTEGER NOT NULL DEFAULT 0,
	first_dose_time TEXT NOT NULL DEFAULT '',
	weekdays TEXT NOT NULL DEFAULT '',
	completed_doses TEXT NOT NULL DEFAULT '[]',
	user_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS schedules (
	id TEXT PRIMARY KEY,
	reminder_id TEXT NOT NULL REFERENCES reminders(id) ON DELETE CASCADE,
	dose_index INTEGER NOT NULL,
	medication_name TEXT NOT NULL,
	dosage_label TEXT NOT NULL DEFAULT '',
	time_of_day TEXT NOT NULL,
	is_completed INTEGER NOT NULL DEFAULT 0,
	is_overdue INTEGER NOT NULL DEFAULT 0,
	completed_at INTEGER NOT NULL DEFAULT 0,
	scheduled_date TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_medications_user ON medications(user_id, is_active, created_at);
CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id, is_active, created_at);
CREATE INDEX IF NOT EXISTS idx_schedules_reminder ON schedules(reminder_id);
CREATE INDEX IF NOT EXISTS idx_schedules_date ON schedules(scheduled_date);
`

var schemaTables = []string{"schedules", "reminders", "medications"}

// ensureSchema brings the database to the current schema version.
func ensureSchema(db *sql.DB) error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if current != 0 && current != schemaVersion {
		if err := dropAll(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

// dropAll removes every table. Dependent tables go first so foreign keys do
// not get in the way.
func dropAll(db *sql.DB) error {
	for _, table := range schemaTables {
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
