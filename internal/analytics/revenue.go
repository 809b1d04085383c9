package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// RevenueBreakdown holds revenue by source. Total is always the exact sum of
// the three sources.
type RevenueBreakdown struct {
	Stays    decimal.Decimal `json:"stays"`
	Orders   decimal.Decimal `json:"orders"`
	Services decimal.Decimal `json:"services"`
	Total    decimal.Decimal `json:"total"`
}

// spanNights is ceil((out - in) / 1 day) read off the wall clock of out's
// location, so a DST change during the stay does not add or drop an hour. It
// may be zero or negative.
func spanNights(in, out time.Time) int {
	from := civil(in.In(out.Location()))
	to := civil(out)
	return int(math.Ceil(float64(to.Sub(from)) / float64(day)))
}

// civil relabels t's wall clock as UTC.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// billableNights returns the nights charged for a stay, floored at one.
// Stays with a missing or inverted date pair are not billable.
func billableNights(s StayRecord) (int, bool) {
	if s.CheckIn == nil || s.CheckOut == nil {
		return 0, false
	}
	if s.CheckOut.Before(*s.CheckIn) {
		return 0, false
	}
	return max(spanNights(*s.CheckIn, *s.CheckOut), 1), true
}

// stayContribution is the revenue a single stay adds to the totals.
func stayContribution(s StayRecord) decimal.Decimal {
	if s.PaymentStatus != PaymentPaid {
		return decimal.Zero
	}
	nights, ok := billableNights(s)
	if !ok {
		return decimal.Zero
	}

	n := decimal.NewFromInt(int64(nights))
	total := amountOrZero(s.TotalAmount)
	rate := amountOrZero(s.RoomRateAtPayment)
	if rate.IsZero() && nights > 0 {
		rate = total.Div(n)
	}

	if total.IsPositive() {
		return total
	}
	return rate.Mul(n)
}

// StayRevenue sums the revenue of paid stays with a usable date pair.
// The recorded total wins over rate x nights whenever it is positive.
//
// A stay whose check-out precedes its check-in is a malformed date pair and
// contributes nothing; the one-night floor applies only to same-day stays.
func StayRevenue(stays []StayRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range stays {
		sum = sum.Add(stayContribution(s))
	}
	return sum
}

// lineTotal is the undiscounted sum of unit price x quantity.
func lineTotal(o OrderRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// OrderRevenue sums paid orders net of their discount. A discount larger than
// the line total yields a negative contribution; it is not clamped.
func OrderRevenue(orders []OrderRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		if o.Status != OrderPaid {
			continue
		}
		sum = sum.Add(lineTotal(o).Sub(amountOrZero(o.Discount)))
	}
	return sum
}

// ScheduledServiceRevenue sums services that are paid or pending. Pending
// bookings count as committed revenue.
func ScheduledServiceRevenue(services []ScheduledServiceRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, sv := range services {
		if sv.PaymentStatus != PaymentPaid && sv.PaymentStatus != PaymentPending {
			continue
		}
		sum = sum.Add(amountOrZero(sv.TotalAmount))
	}
	return sum
}

// TotalRevenue combines the three revenue sources with no other adjustment.
func TotalRevenue(stays []StayRecord, orders []OrderRecord, services []ScheduledServiceRecord) RevenueBreakdown {
	b := RevenueBreakdown{
		Stays:    StayRevenue(stays),
		Orders:   OrderRevenue(orders),
		Services: ScheduledServiceRevenue(services),
	}
	b.Total = b.Stays.Add(b.Orders).Add(b.Services)
	return b
}
