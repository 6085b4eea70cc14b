package models

import "time"

// Medication represents a registered medication.
type Medication struct {
	ID           ID      `db:"id" json:"id" bson:"_id"`
	Name         string  `db:"name" json:"name" bson:"name"`
	Dosage       float64 `db:"dosage" json:"dosage" bson:"dosage"`
	Unit         string  `db:"unit" json:"unit" bson:"unit"`
	Form         string  `db:"form" json:"form" bson:"form"` // tablet, capsule, syrup, ...
	Description  string  `db:"description" json:"description,omitempty" bson:"description,omitempty"`
	Instructions string  `db:"instructions" json:"instructions,omitempty" bson:"instructions,omitempty"`
	UserID       string  `db:"user_id" json:"user_id" bson:"userId"`
	CreatedAt    int64   `db:"created_at" json:"created_at" bson:"createdAt"`
	IsActive     bool    `db:"is_active" json:"is_active" bson:"isActive"`
}

// TableName returns the table name for Medication.
func (Medication) TableName() string {
	return "medications"
}

// CreatedAtTime returns CreatedAt as time.Time.
func (m *Medication) CreatedAtTime() time.Time {
	return time.Unix(m.CreatedAt, 0)
}

// Equal reports field-wise equality, used by the reconciliation pass to
// decide whether a remote copy should overwrite the local one.
func (m *Medication) Equal(other *Medication) bool {
	if other == nil {
		return false
	}
	return m.ID == other.ID &&
		m.Name == other.Name &&
		m.Dosage == other.Dosage &&
		m.Unit == other.Unit &&
		m.Form == other.Form &&
		m.Description == other.Description &&
		m.Instructions == other.Instructions &&
		m.UserID == other.UserID &&
		m.CreatedAt == other.CreatedAt &&
		m.IsActive == other.IsActive
}
