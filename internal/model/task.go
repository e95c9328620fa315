package model

import "time"

// Task is a recurring household obligation.
type Task struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description string
	Cadence     Cadence `gorm:"type:varchar(16);not null;index"`
	// PinnedWeekday uses Monday=0..Sunday=6 and is only set for WEEKLY/BIWEEKLY tasks.
	PinnedWeekday *int
	// AnchorDate is the first occurrence of a pinned BIWEEKLY task's 14-day cycle.
	AnchorDate *time.Time
	Assignees  []User `gorm:"many2many:task_assignees;"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPinned reports whether the task is materialized on a fixed weekday.
func (t Task) IsPinned() bool {
	return t.PinnedWeekday != nil && t.Cadence.SupportsPinnedWeekday()
}

func (t Task) AssignedTo(userID uint) bool {
	for _, u := range t.Assignees {
		if u.ID == userID {
			return true
		}
	}
	return false
}
