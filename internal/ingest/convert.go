package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"hotel-analytics-backend/internal/model"
	"hotel-analytics-backend/internal/parse"
)

// ErrMalformedRecord marks an upstream record that cannot be stored at all.
// Such records are skipped; the rest of the batch is kept.
var ErrMalformedRecord = errors.New("malformed record")

// converter turns upstream items into models. Dates are kept as the hotel's
// wall clock (see parse.WallClock). Bad dates are logged and dropped, leaving
// the field absent.
type converter struct {
	loc *time.Location
	log logrus.FieldLogger
}

func requireID(kind string, id RecordID) (string, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return "", fmt.Errorf("%w: %s without id", ErrMalformedRecord, kind)
	}
	return s, nil
}

func (c converter) date(kind, id, field string, raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := parse.ParseDate(*raw, c.loc)
	if err != nil {
		c.log.WithFields(logrus.Fields{"kind": kind, "id": id, "field": field}).WithError(err).Warn("dropping unparseable date")
		return nil
	}
	if t == nil {
		return nil
	}
	local := parse.WallClock(*t, c.loc)
	return &local
}

func (c converter) stay(it StayItem) (model.Stay, error) {
	id, err := requireID("stay", it.ID)
	if err != nil {
		return model.Stay{}, err
	}
	return model.Stay{
		ID:                id,
		GuestName:         it.GuestName,
		Adults:            it.Adults,
		Children:          it.Children,
		CheckIn:           c.date("stay", id, "checkIn", it.CheckIn),
		CheckOut:          c.date("stay", id, "checkOut", it.CheckOut),
		Status:            string(parse.NormalizeStayStatus(it.Status)),
		PaymentStatus:     string(parse.NormalizePaymentStatus(it.PaymentStatus)),
		TotalAmount:       it.TotalAmount,
		RoomRateAtPayment: it.RoomRateAtPayment,
	}, nil
}

func (c converter) order(it OrderItem) (model.Order, error) {
	id, err := requireID("order", it.ID)
	if err != nil {
		return model.Order{}, err
	}
	o := model.Order{
		ID:       id,
		Status:   string(parse.NormalizeOrderStatus(it.Status)),
		PlacedAt: c.date("order", id, "placedAt", it.PlacedAt),
		Discount: it.Discount,
		Items:    make([]model.OrderItem, 0, len(it.Items)),
	}
	for _, line := range it.Items {
		o.Items = append(o.Items, model.OrderItem{
			OrderID:   id,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return o, nil
}

func (c converter) service(it ServiceItem) (model.ScheduledService, error) {
	id, err := requireID("scheduled service", it.ID)
	if err != nil {
		return model.ScheduledService{}, err
	}
	return model.ScheduledService{
		ID:            id,
		ServiceName:   it.ServiceName,
		ScheduledAt:   c.date("service", id, "scheduledAt", it.ScheduledAt),
		PaymentStatus: string(parse.NormalizePaymentStatus(it.PaymentStatus)),
		TotalAmount:   it.TotalAmount,
	}, nil
}

func (c converter) room(it RoomItem) (model.Room, error) {
	id, err := requireID("room", it.ID)
	if err != nil {
		return model.Room{}, err
	}
	return model.Room{
		ID:     id,
		Number: it.Number,
		Status: string(parse.NormalizeRoomStatus(it.Status)),
	}, nil
}

// convertAll converts items, skipping malformed ones and duplicate ids. The
// first occurrence of an id wins.
func convertAll[I any, M any](log logrus.FieldLogger, items []I, conv func(I) (M, error), id func(M) string) []M {
	out := make([]M, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		m, err := conv(it)
		if err != nil {
			log.WithError(err).Warn("skipping upstream record")
			continue
		}
		key := id(m)
		if _, dup := seen[key]; dup {
			log.WithField("id", key).Warn("skipping duplicate upstream record")
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}
