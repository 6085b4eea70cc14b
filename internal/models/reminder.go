package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// FrequencyMode selects how a reminder's Frequency value is interpreted.
type FrequencyMode string

const (
	// FrequencyPerDay: Frequency is the number of doses per day.
	FrequencyPerDay FrequencyMode = "per_day"
	// FrequencyEveryHours: Frequency is the hour gap between doses.
	FrequencyEveryHours FrequencyMode = "every_hours"
)

// DoseSet is the set of completed dose indices for the current day.
// Indices are zero-based positions into the reminder's computed schedule and
// are only meaningful against the current schedule; editing the frequency
// invalidates previously recorded indices (known product-level ambiguity,
// preserved as-is).
type DoseSet []int

// Has reports whether the set contains the given dose index.
func (s DoseSet) Has(index int) bool {
	for _, i := range s {
		if i == index {
			return true
		}
	}
	return false
}

// Toggle returns a new set with the index added if absent or removed if
// present. The receiver is not modified.
func (s DoseSet) Toggle(index int) DoseSet {
	out := make(DoseSet, 0, len(s)+1)
	found := false
	for _, i := range s {
		if i == index {
			found = true
			continue
		}
		out = append(out, i)
	}
	if !found {
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

// Value implements driver.Valuer, storing the set as a JSON array.
func (s DoseSet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]int(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *DoseSet) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into models.DoseSet", value)
	}
	if len(raw) == 0 {
		*s = nil
		return nil
	}
	var out []int
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("invalid dose set %q: %w", raw, err)
	}
	*s = DoseSet(out)
	return nil
}

// Reminder is a user-configured recurring medication-taking rule.
type Reminder struct {
	ID             ID            `db:"id" json:"id" bson:"_id"`
	MedicationID   ID            `db:"medication_id" json:"medication_id" bson:"medicationId"`
	MedicationName string        `db:"medication_name" json:"medication_name" bson:"medicationName"`
	Dosage         float64       `db:"dosage" json:"dosage" bson:"dosage"`
	Unit           string        `db:"unit" json:"unit" bson:"unit"`
	Form           string        `db:"form" json:"form" bson:"form"`
	FrequencyMode  FrequencyMode `db:"frequency_mode" json:"frequency_mode" bson:"frequencyMode"`
	Frequency      int           `db:"frequency" json:"frequency" bson:"frequency"`
	FirstDoseTime  string        `db:"first_dose_time" json:"first_dose_time" bson:"firstDoseTime"`
	Weekdays       string        `db:"weekdays" json:"weekdays" bson:"weekdays"` // comma-joined, empty = every day
	CompletedDoses DoseSet       `db:"completed_doses" json:"completed_doses" bson:"completedDoses"`
	UserID         string        `db:"user_id" json:"user_id" bson:"userId"`
	CreatedAt      int64         `db:"created_at" json:"created_at" bson:"createdAt"`
	IsActive       bool          `db:"is_active" json:"is_active" bson:"isActive"`
}

// TableName returns the table name for Reminder.
func (Reminder) TableName() string {
	return "reminders"
}

// CreatedAtTime returns CreatedAt as time.Time.
func (r *Reminder) CreatedAtTime() time.Time {
	return time.Unix(r.CreatedAt, 0)
}

// DosageLabel renders the dosage for display, e.g. "500 mg".
func (r *Reminder) DosageLabel() string {
	return strings.TrimSpace(fmt.Sprintf("%g %s", r.Dosage, r.Unit))
}

// ActiveOn reports whether the reminder applies on the given weekday.
// An empty weekday selection means every day.
func (r *Reminder) ActiveOn(day time.Weekday) bool {
	if strings.TrimSpace(r.Weekdays) == "" {
		return true
	}
	want := strings.ToLower(day.String()[:3])
	for _, d := range strings.Split(r.Weekdays, ",") {
		if strings.ToLower(strings.TrimSpace(d)) == want {
			return true
		}
	}
	return false
}

// Equal reports field-wise equality, used by the reconciliation pass.
func (r *Reminder) Equal(other *Reminder) bool {
	if other == nil {
		return false
	}
	if len(r.CompletedDoses) != len(other.CompletedDoses) {
		return false
	}
	for i := range r.CompletedDoses {
		if r.CompletedDoses[i] != other.CompletedDoses[i] {
			return false
		}
	}
	return r.ID == other.ID &&
		r.MedicationID == other.MedicationID &&
		r.MedicationName == other.MedicationName &&
		r.Dosage == other.Dosage &&
		r.Unit == other.Unit &&
		r.Form == other.Form &&
		r.FrequencyMode == other.FrequencyMode &&
		r.Frequency == other.Frequency &&
		r.FirstDoseTime == other.FirstDoseTime &&
		r.Weekdays == other.Weekdays &&
		r.UserID == other.UserID &&
		r.CreatedAt == other.CreatedAt &&
		r.IsActive == other.IsActive
}
