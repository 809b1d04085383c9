// Package analytics derives revenue, booking and occupancy metrics from
// in-memory snapshots of hotel records. Every function is pure: inputs are
// never mutated and nothing is cached between calls.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// StayStatus is the lifecycle state of a room booking.
type StayStatus string

const (
	StayConfirmed  StayStatus = "confirmed"
	StayCheckedIn  StayStatus = "checked_in"
	StayCheckedOut StayStatus = "checked_out"
	StayCancelled  StayStatus = "cancelled"
)

// PaymentStatus is shared by stays and scheduled services.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

// OrderStatus is the state of a restaurant/room-service order.
type OrderStatus string

const (
	OrderPaid      OrderStatus = "paid"
	OrderPending   OrderStatus = "pending"
	OrderReady     OrderStatus = "ready"
	OrderCancelled OrderStatus = "cancelled"
)

// RoomStatus is the current state of a room in the inventory snapshot.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

// StayRecord is a single room booking.
type StayRecord struct {
	ID                string
	GuestName         string
	Adults            int
	Children          int
	CheckIn           *time.Time
	CheckOut          *time.Time
	Status            StayStatus
	PaymentStatus     PaymentStatus
	TotalAmount       decimal.NullDecimal
	RoomRateAtPayment decimal.NullDecimal
}

// OrderItem is one line of an order, priced at order time.
type OrderItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// OrderRecord is a food/beverage or room-service order.
type OrderRecord struct {
	ID       string
	Status   OrderStatus
	PlacedAt *time.Time
	Items    []OrderItem
	// Discount applies once to the whole order, never per item.
	Discount decimal.NullDecimal
}

// ScheduledServiceRecord is a booked amenity (spa, event space, ...).
type ScheduledServiceRecord struct {
	ID            string
	ServiceName   string
	ScheduledAt   *time.Time
	PaymentStatus PaymentStatus
	TotalAmount   decimal.NullDecimal
}

// RoomRecord is one room of the inventory snapshot.
type RoomRecord struct {
	ID     string
	Number string
	Status RoomStatus
}

// Snapshot is a caller-owned, immutable view of all records used for one
// aggregation pass.
type Snapshot struct {
	Stays    []StayRecord
	Orders   []OrderRecord
	Services []ScheduledServiceRecord
	Rooms    []RoomRecord
}

// Validate reports a precondition violation when a collection is missing
// altogether. Empty collections are valid.
func (s Snapshot) Validate() error {
	switch {
	case s.Stays == nil:
		return nilCollection("stays")
	case s.Orders == nil:
		return nilCollection("orders")
	case s.Services == nil:
		return nilCollection("services")
	case s.Rooms == nil:
		return nilCollection("rooms")
	}
	return nil
}

// amountOrZero returns the amount, or zero when it is absent.
func amountOrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
