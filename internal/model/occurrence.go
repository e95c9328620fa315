package model

import "time"

// Occurrence is one concrete instance of a task on a UTC civil day.
// (task_id, date) is unique; Date is always UTC midnight.
type Occurrence struct {
	ID     uint      `gorm:"primaryKey"`
	TaskID uint      `gorm:"not null;uniqueIndex:idx_occurrence_task_date"`
	Task   Task      `gorm:"constraint:OnDelete:CASCADE"`
	Date   time.Time `gorm:"not null;uniqueIndex:idx_occurrence_task_date;index"`
	// Slot is the cadence row the occurrence fills on the planning grid.
	Slot      Cadence `gorm:"type:varchar(16);not null"`
	Suggested bool    `gorm:"default:false"`
	// Hidden replaces removal so the day is not materialized again.
	Hidden    bool `gorm:"default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
