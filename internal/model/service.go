package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledService is a booked amenity such as a spa slot or event space.
type ScheduledService struct {
	ID            string              `gorm:"primaryKey;size:64"`
	ServiceName   string              `gorm:"size:256"`
	ScheduledAt   *time.Time          `gorm:"index"`
	PaymentStatus string              `gorm:"size:32;not null"`
	TotalAmount   decimal.NullDecimal `gorm:"type:decimal(14,2)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
