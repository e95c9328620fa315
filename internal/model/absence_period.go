package model

import "time"

// AbsencePeriod is an inclusive civil-date range during which a member's streak is kept.
type AbsencePeriod struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	Reason    string
	CreatedAt time.Time
}
