package model

import "time"

// User is a household member. TelegramID is set for members who talk to the bot.
type User struct {
	ID         uint   `gorm:"primaryKey"`
	TelegramID *int64 `gorm:"uniqueIndex"`
	Name       string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
