package store

import (
	"time"

	"hotel-analytics-backend/internal/analytics"
	"hotel-analytics-backend/internal/model"
)

// Batch is the full set of records fetched in one ingest cycle.
type Batch struct {
	RunID     string
	StartedAt time.Time
	Stays     []model.Stay
	Orders    []model.Order
	Services  []model.ScheduledService
	Rooms     []model.Room
}

func toSnapshot(stays []model.Stay, orders []model.Order, services []model.ScheduledService, rooms []model.Room) analytics.Snapshot {
	snap := analytics.Snapshot{
		Stays:    make([]analytics.StayRecord, 0, len(stays)),
		Orders:   make([]analytics.OrderRecord, 0, len(orders)),
		Services: make([]analytics.ScheduledServiceRecord, 0, len(services)),
		Rooms:    make([]analytics.RoomRecord, 0, len(rooms)),
	}
	for _, s := range stays {
		snap.Stays = append(snap.Stays, analytics.StayRecord{
			ID:                s.ID,
			GuestName:         s.GuestName,
			Adults:            s.Adults,
			Children:          s.Children,
			CheckIn:           s.CheckIn,
			CheckOut:          s.CheckOut,
			Status:            analytics.StayStatus(s.Status),
			PaymentStatus:     analytics.PaymentStatus(s.PaymentStatus),
			TotalAmount:       s.TotalAmount,
			RoomRateAtPayment: s.RoomRateAtPayment,
		})
	}
	for _, o := range orders {
		items := make([]analytics.OrderItem, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, analytics.OrderItem{Name: it.Name, UnitPrice: it.UnitPrice, Quantity: it.Quantity})
		}
		snap.Orders = append(snap.Orders, analytics.OrderRecord{
			ID:       o.ID,
			Status:   analytics.OrderStatus(o.Status),
			PlacedAt: o.PlacedAt,
			Items:    items,
			Discount: o.Discount,
		})
	}
	for _, s := range services {
		snap.Services = append(snap.Services, analytics.ScheduledServiceRecord{
			ID:            s.ID,
			ServiceName:   s.ServiceName,
			ScheduledAt:   s.ScheduledAt,
			PaymentStatus: analytics.PaymentStatus(s.PaymentStatus),
			TotalAmount:   s.TotalAmount,
		})
	}
	for _, r := range rooms {
		snap.Rooms = append(snap.Rooms, analytics.RoomRecord{
			ID:     r.ID,
			Number: r.Number,
			Status: analytics.RoomStatus(r.Status),
		})
	}
	return snap
}
