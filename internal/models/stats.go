package models

// Stats are adherence counters derived from the current snapshots. They are
// always recomputed as a fold and never stored as ground truth.
type Stats struct {
	TotalMedications int `json:"total_medications"`
	ActiveReminders  int `json:"active_reminders"`
	CompletedToday   int `json:"completed_today"`
	PendingToday     int `json:"pending_today"`
}

// FoldStats computes Stats from the latest snapshots.
func FoldStats(meds []*Medication, reminders []*Reminder, today []*ScheduleEntry) Stats {
	s := Stats{TotalMedications: len(meds)}
	for _, r := range reminders {
		if r.IsActive {
			s.ActiveReminders++
		}
	}
	for _, e := range today {
		if e.IsCompleted {
			s.CompletedToday++
		} else {
			s.PendingToday++
		}
	}
	return s
}
