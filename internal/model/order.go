package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a restaurant or room-service order.
type Order struct {
	ID        string              `gorm:"primaryKey;size:64"`
	Status    string              `gorm:"size:32;index;not null"`
	PlacedAt  *time.Time          `gorm:"index"`
	Discount  decimal.NullDecimal `gorm:"type:decimal(14,2)"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is a single priced line of an order.
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	OrderID   string          `gorm:"size:64;index;not null"`
	Name      string          `gorm:"size:256"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Quantity  int             `gorm:"not null"`
}
