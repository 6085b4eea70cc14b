// Package db provides repository interfaces for the medminder models.
package db

import (
	"medminder/internal/models"
)

// MedicationRepository defines operations for medication persistence.
type MedicationRepository interface {
	CreateMedication(m *models.Medication) error
	GetMedication(id models.ID) (*models.Medication, error)
	ListActiveMedications(userID string) ([]*models.Medication, error)
	UpdateMedication(m *models.Medication) error
	ReplaceMedication(m *models.Medication) error
	DeactivateMedication(id models.ID) error
	PurgeMedication(id models.ID) error
	RewriteMedicationID(oldID, newID models.ID) error
}

// ReminderRepository defines operations for reminder persistence.
type ReminderRepository interface {
	CreateReminder(rem *models.Reminder) error
	GetReminder(id models.ID) (*models.Reminder, error)
	ListActiveReminders(userID string) ([]*models.Reminder, error)
	UpdateReminder(rem *models.Reminder) error
	ReplaceReminder(rem *models.Reminder) error
	DeleteReminder(id models.ID) error
	RewriteReminderID(oldID, newID models.ID) error
}

// ScheduleRepository defines operations for materialized schedule rows.
type ScheduleRepository interface {
	ReplaceSchedule(reminderID models.ID, entries []*models.ScheduleEntry) error
	ListScheduleForReminder(reminderID models.ID) ([]*models.ScheduleEntry, error)
	ListScheduleForDate(userID, date string) ([]*models.ScheduleEntry, error)
}

// LocalStore combines the repositories the reconciler needs.
type LocalStore interface {
	MedicationRepository
	ReminderRepository
	ScheduleRepository
}

// Ensure *Repository implements the interfaces at compile time.
var (
	_ MedicationRepository = (*Repository)(nil)
	_ ReminderRepository   = (*Repository)(nil)
	_ ScheduleRepository   = (*Repository)(nil)
	_ LocalStore           = (*Repository)(nil)
)
