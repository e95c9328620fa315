package model

import "time"

// Completion records that a task was done by a member.
type Completion struct {
	ID           uint      `gorm:"primaryKey"`
	TaskID       uint      `gorm:"not null;index"`
	OccurrenceID *uint     `gorm:"uniqueIndex"`
	UserID       uint      `gorm:"not null;index"`
	CompletedAt  time.Time `gorm:"not null;index"`
	Notes        string
	CreatedAt    time.Time
}
