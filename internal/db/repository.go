// Package db provides CRUD repository operations for the medminder models.
package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"medminder/internal/models"

	"github.com/google/uuid"
)

// Repository provides CRUD operations for all models. Writes are atomic per
// entity; reminder deletion cascades to its schedule rows in one transaction.
type Repository struct {
	db *sql.DB

	// Prepared statement cache for frequently used queries.
	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// PrepareStmt gets or creates a prepared statement from cache.
func (r *Repository) PrepareStmt(query string) (*sql.Stmt, error) {
	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		// Another goroutine already prepared this one.
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}
	return stmt, nil
}

// Close closes all cached prepared statements.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// =====================================================
// Medication Operations
// =====================================================

const medicationColumns = `id, name, dosage, unit, form, description, instructions, user_id, created_at, is_active`

// CreateMedication inserts a medication. A local-temporary identity and the
// creation timestamp are assigned when absent.
func (r *Repository) CreateMedication(m *models.Medication) error {
	if m.ID == "" {
		m.ID = models.NewLocalID()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().Unix()
	}

	query := `
	INSERT INTO medications (` + medicationColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, m.ID, m.Name, m.Dosage, m.Unit, m.Form,
		m.Description, m.Instructions, m.UserID, m.CreatedAt, m.IsActive)
	return err
}

func scanMedication(row interface{ Scan(...interface{}) error }) (*models.Medication, error) {
	var m models.Medication
	err := row.Scan(&m.ID, &m.Name, &m.Dosage, &m.Unit, &m.Form,
		&m.Description, &m.Instructions, &m.UserID, &m.CreatedAt, &m.IsActive)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMedication retrieves a medication by ID.
func (r *Repository) GetMedication(id models.ID) (*models.Medication, error) {
	stmt, err := r.PrepareStmt(`SELECT ` + medicationColumns + ` FROM medications WHERE id = ?`)
	if err != nil {
		return nil, err
	}
	return scanMedication(stmt.QueryRow(id))
}

// ListActiveMedications returns the user's active medications, newest first.
// The UI layer relies on this ordering and does not sort on its own.
func (r *Repository) ListActiveMedications(userID string) ([]*models.Medication, error) {
	stmt, err := r.PrepareStmt(`
	SELECT ` + medicationColumns + ` FROM medications
	WHERE user_id = ? AND is_active = 1
	ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []*models.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

// UpdateMedication updates an existing medication.
func (r *Repository) UpdateMedication(m *models.Medication) error {
	query := `
	UPDATE medications
	SET name = ?, dosage = ?, unit = ?, form = ?, description = ?,
		instructions = ?, user_id = ?, created_at = ?, is_active = ?
	WHERE id = ?
	`
	result, err := r.db.Exec(query, m.Name, m.Dosage, m.Unit, m.Form,
		m.Description, m.Instructions, m.UserID, m.CreatedAt, m.IsActive, m.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceMedication writes the given medication unconditionally, inserting or
// overwriting. Used by the reconciliation pass where remote wins.
func (r *Repository) ReplaceMedication(m *models.Medication) error {
	query := `
	INSERT OR REPLACE INTO medications (` + medicationColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, m.ID, m.Name, m.Dosage, m.Unit, m.Form,
		m.Description, m.Instructions, m.UserID, m.CreatedAt, m.IsActive)
	return err
}

// DeactivateMedication soft-deletes a medication by flipping its active flag.
func (r *Repository) DeactivateMedication(id models.ID) error {
	result, err := r.db.Exec(`UPDATE medications SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PurgeMedication physically removes a medication row. Reminders referencing
// it keep their copied display name; there is no cascade from medications to
// reminders.
func (r *Repository) PurgeMedication(id models.ID) error {
	result, err := r.db.Exec(`DELETE FROM medications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RewriteMedicationID promotes a local-temporary identity to the
// server-assigned one, carrying reminder references along in the same
// transaction.
func (r *Repository) RewriteMedicationID(oldID, newID models.ID) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE medications SET id = ? WHERE id = ?`, newID, oldID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE reminders SET medication_id = ? WHERE medication_id = ?`, newID, oldID); err != nil {
		return err
	}
	return tx.Commit()
}

// =====================================================
// Reminder Operations
// =====================================================

const reminderColumns = `id, medication_id, medication_name, dosage, unit, form,
	frequency_mode, frequency, first_dose_time, weekdays, completed_doses,
	user_id, created_at, is_active`

// CreateReminder inserts a reminder. A local-temporary identity and the
// creation timestamp are assigned when absent.
func (r *Repository) CreateReminder(rem *models.Reminder) error {
	if rem.ID == "" {
		rem.ID = models.NewLocalID()
	}
	if rem.CreatedAt == 0 {
		rem.CreatedAt = time.Now().Unix()
	}

	query := `
	INSERT INTO reminders (` + reminderColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, rem.ID, rem.MedicationID, rem.MedicationName,
		rem.Dosage, rem.Unit, rem.Form, rem.FrequencyMode, rem.Frequency,
		rem.FirstDoseTime, rem.Weekdays, rem.CompletedDoses,
		rem.UserID, rem.CreatedAt, rem.IsActive)
	return err
}

func scanReminder(row interface{ Scan(...interface{}) error }) (*models.Reminder, error) {
	var rem models.Reminder
	err := row.Scan(&rem.ID, &rem.MedicationID, &rem.MedicationName,
		&rem.Dosage, &rem.Unit, &rem.Form, &rem.FrequencyMode, &rem.Frequency,
		&rem.FirstDoseTime, &rem.Weekdays, &rem.CompletedDoses,
		&rem.UserID, &rem.CreatedAt, &rem.IsActive)
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

// GetReminder retrieves a reminder by ID.
func (r *Repository) GetReminder(id models.ID) (*models.Reminder, error) {
	stmt, err := r.PrepareStmt(`SELECT ` + reminderColumns + ` FROM reminders WHERE id = ?`)
	if err != nil {
		return nil, err
	}
	return scanReminder(stmt.QueryRow(id))
}

// ListActiveReminders returns the user's active reminders, newest first.
func (r *Repository) ListActiveReminders(userID string) ([]*models.Reminder, error) {
	stmt, err := r.PrepareStmt(`
	SELECT ` + reminderColumns + ` FROM reminders
	WHERE user_id = ? AND is_active = 1
	ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// UpdateReminder updates an existing reminder.
func (r *Repository) UpdateReminder(rem *models.Reminder) error {
	query := `
	UPDATE reminders
	SET medication_id = ?, medication_name = ?, dosage = ?, unit = ?, form = ?,
		frequency_mode = ?, frequency = ?, first_dose_time = ?, weekdays = ?,
		completed_doses = ?, user_id = ?, created_at = ?, is_active = ?
	WHERE id = ?
	`
	result, err := r.db.Exec(query, rem.MedicationID, rem.MedicationName,
		rem.Dosage, rem.Unit, rem.Form, rem.FrequencyMode, rem.Frequency,
		rem.FirstDoseTime, rem.Weekdays, rem.CompletedDoses,
		rem.UserID, rem.CreatedAt, rem.IsActive, rem.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceReminder writes the given reminder unconditionally, inserting or
// overwriting. Used by the reconciliation pass where remote wins.
func (r *Repository) ReplaceReminder(rem *models.Reminder) error {
	query := `
	INSERT OR REPLACE INTO reminders (` + reminderColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, rem.ID, rem.MedicationID, rem.MedicationName,
		rem.Dosage, rem.Unit, rem.Form, rem.FrequencyMode, rem.Frequency,
		rem.FirstDoseTime, rem.Weekdays, rem.CompletedDoses,
		rem.UserID, rem.CreatedAt, rem.IsActive)
	return err
}

// DeleteReminder removes a reminder and its schedule rows in one transaction.
func (r *Repository) DeleteReminder(id models.ID) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM schedules WHERE reminder_id = ?`, id); err != nil {
		return err
	}
	result, err := tx.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

// RewriteReminderID promotes a local-temporary identity to the
// server-assigned one, carrying schedule references along in the same
// transaction.
func (r *Repository) RewriteReminderID(oldID, newID models.ID) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// schedules.reminder_id references reminders.id; defer enforcement so
	// parent and children can be rewritten in sequence.
	if _, err := tx.Exec(`PRAGMA defer_foreign_keys = ON`); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE reminders SET id = ? WHERE id = ?`, newID, oldID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE schedules SET reminder_id = ? WHERE reminder_id = ?`, newID, oldID); err != nil {
		return err
	}
	return tx.Commit()
}

// =====================================================
// Schedule Operations
// =====================================================

const scheduleColumns = `id, reminder_id, dose_index, medication_name, dosage_label,
	time_of_day, is_completed, is_overdue, completed_at, scheduled_date`

// ReplaceSchedule swaps a reminder's materialized schedule for the given
// entries in one transaction. Stale rows from a previous computation are
// always fully removed, never merged.
func (r *Repository) ReplaceSchedule(reminderID models.ID, entries []*models.ScheduleEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM schedules WHERE reminder_id = ?`, reminderID); err != nil {
		return err
	}

	query := `
	INSERT INTO schedules (` + scheduleColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, e := range entries {
		if e.ID == "" {
			e.ID = models.ID(uuid.New().String())
		}
		e.ReminderID = reminderID
		if _, err := tx.Exec(query, e.ID, e.ReminderID, e.DoseIndex,
			e.MedicationName, e.DosageLabel, e.TimeOfDay,
			e.IsCompleted, e.IsOverdue, e.CompletedAt, e.ScheduledDate); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanScheduleEntry(row interface{ Scan(...interface{}) error }) (*models.ScheduleEntry, error) {
	var e models.ScheduleEntry
	err := row.Scan(&e.ID, &e.ReminderID, &e.DoseIndex, &e.MedicationName,
		&e.DosageLabel, &e.TimeOfDay, &e.IsCompleted, &e.IsOverdue,
		&e.CompletedAt, &e.ScheduledDate)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListScheduleForReminder returns a reminder's schedule rows in dose order.
func (r *Repository) ListScheduleForReminder(reminderID models.ID) ([]*models.ScheduleEntry, error) {
	stmt, err := r.PrepareStmt(`
	SELECT ` + scheduleColumns + ` FROM schedules
	WHERE reminder_id = ?
	ORDER BY dose_index`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(reminderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ScheduleEntry
	for rows.Next() {
		e, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListScheduleForDate returns the user's schedule for a calendar day, ordered
// by time of day.
func (r *Repository) ListScheduleForDate(userID, date string) ([]*models.ScheduleEntry, error) {
	stmt, err := r.PrepareStmt(`
	SELECT s.id, s.reminder_id, s.dose_index, s.medication_name, s.dosage_label,
		s.time_of_day, s.is_completed, s.is_overdue, s.completed_at, s.scheduled_date
	FROM schedules s
	JOIN reminders rem ON rem.id = s.reminder_id
	WHERE rem.user_id = ? AND s.scheduled_date = ?
	ORDER BY s.time_of_day, s.dose_index`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ScheduleEntry
	for rows.Next() {
		e, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
