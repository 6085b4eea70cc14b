package models

// ScheduleEntry is one materialized dose slot for the current day.
// Entries are derived from active reminders and fully regenerated on every
// reminder mutation; they are never edited in place.
type ScheduleEntry struct {
	ID            ID     `db:"id" json:"id"`
	ReminderID    ID     `db:"reminder_id" json:"reminder_id"`
	DoseIndex     int    `db:"dose_index" json:"dose_index"`
	MedicationName string `db:"medication_name" json:"medication_name"`
	DosageLabel   string `db:"dosage_label" json:"dosage_label"`
	TimeOfDay     string `db:"time_of_day" json:"time_of_day"` // "15:04"
	IsCompleted   bool   `db:"is_completed" json:"is_completed"`
	IsOverdue     bool   `db:"is_overdue" json:"is_overdue"`
	CompletedAt   int64  `db:"completed_at" json:"completed_at,omitempty"`
	ScheduledDate string `db:"scheduled_date" json:"scheduled_date"` // "2006-01-02"
}

// TableName returns the table name for ScheduleEntry.
func (ScheduleEntry) TableName() string {
	return "schedules"
}
