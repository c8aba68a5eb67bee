package models

import "time"

// SequenceCounter stores the last value for named monotonic counters.
// Certificate numbering uses one row per calendar year, e.g. "certificate:2026".
type SequenceCounter struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	LastValue int64     `gorm:"not null;default:0" json:"last_value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }

// AllModels lists every entity managed by auto-migration
func AllModels() []any {
	return []any{
		&Profile{},
		&Contract{},
		&Certificate{},
		&SequenceCounter{},
	}
}
