package model

import "time"

// Room is one room of the hotel inventory with its current status.
type Room struct {
	ID        string `gorm:"primaryKey;size:64"`
	Number    string `gorm:"size:32"`
	Status    string `gorm:"size:32;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
