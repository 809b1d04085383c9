package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ApiResponse models the top-level structure of the upstream API's paged
// responses.
type ApiResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Page     int `json:"page"`
		PageSize int `json:"pageSize"`
		Total    int `json:"total"`
		Items    []T `json:"items"`
	} `json:"data"`
}

// RecordID accepts identifiers sent either as JSON strings or numbers.
type RecordID string

func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid record id %s: %w", b, err)
	}
	*id = RecordID(n.String())
	return nil
}

// StayItem is a booking as served by the upstream API.
type StayItem struct {
	ID                RecordID            `json:"id"`
	GuestName         string              `json:"guestName"`
	Adults            int                 `json:"adults"`
	Children          int                 `json:"children"`
	CheckIn           *string             `json:"checkIn"`
	CheckOut          *string             `json:"checkOut"`
	Status            string              `json:"status"`
	PaymentStatus     string              `json:"paymentStatus"`
	TotalAmount       decimal.NullDecimal `json:"totalAmount"`
	RoomRateAtPayment decimal.NullDecimal `json:"roomRateAtPayment"`
}

// OrderLine is one line of an upstream order.
type OrderLine struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// OrderItem is a restaurant or room-service order as served upstream.
type OrderItem struct {
	ID       RecordID            `json:"id"`
	Status   string              `json:"status"`
	PlacedAt *string             `json:"placedAt"`
	Items    []OrderLine         `json:"items"`
	Discount decimal.NullDecimal `json:"discount"`
}

// ServiceItem is a scheduled amenity booking as served upstream.
type ServiceItem struct {
	ID            RecordID            `json:"id"`
	ServiceName   string              `json:"serviceName"`
	ScheduledAt   *string             `json:"scheduledAt"`
	PaymentStatus string              `json:"paymentStatus"`
	TotalAmount   decimal.NullDecimal `json:"totalAmount"`
}

// RoomItem is one room of the upstream inventory.
type RoomItem struct {
	ID     RecordID `json:"id"`
	Number string   `json:"number"`
	Status string   `json:"status"`
}
