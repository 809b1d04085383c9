package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stay is a room booking as last seen upstream.
type Stay struct {
	ID                string              `gorm:"primaryKey;size:64"`
	GuestName         string              `gorm:"size:256"`
	Adults            int                 `gorm:"not null;default:0"`
	Children          int                 `gorm:"not null;default:0"`
	CheckIn           *time.Time          `gorm:"index"`
	CheckOut          *time.Time          `gorm:"index"`
	Status            string              `gorm:"size:32;index;not null"`
	PaymentStatus     string              `gorm:"size:32;not null"`
	TotalAmount       decimal.NullDecimal `gorm:"type:decimal(14,2)"`
	RoomRateAtPayment decimal.NullDecimal `gorm:"type:decimal(14,2)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
