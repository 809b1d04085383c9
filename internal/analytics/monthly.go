package analytics

import (
	"iter"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMonthsBack is the trailing window used by the dashboard chart.
const DefaultMonthsBack = 6

// MonthlyPoint is one calendar month of the revenue series.
type MonthlyPoint struct {
	Month        string          `json:"month"` // 2006-01
	Label        string          `json:"label"` // Jan
	Revenue      decimal.Decimal `json:"revenue"`
	BookingCount int             `json:"bookingCount"`
}

// MonthlyRevenueSeries yields monthsBack points, oldest first, ending with the
// calendar month of now. Months are evaluated in now's location. Each
// iteration recomputes from stays; nothing is memoised.
func MonthlyRevenueSeries(stays []StayRecord, monthsBack int, now time.Time) iter.Seq[MonthlyPoint] {
	if monthsBack <= 0 {
		monthsBack = DefaultMonthsBack
	}
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	return func(yield func(MonthlyPoint) bool) {
		for i := monthsBack - 1; i >= 0; i-- {
			if !yield(monthPoint(stays, current.AddDate(0, -i, 0))) {
				return
			}
		}
	}
}

// MonthlyRevenue collects MonthlyRevenueSeries into a slice.
func MonthlyRevenue(stays []StayRecord, monthsBack int, now time.Time) []MonthlyPoint {
	return slices.Collect(MonthlyRevenueSeries(stays, monthsBack, now))
}

func monthPoint(stays []StayRecord, start time.Time) MonthlyPoint {
	p := MonthlyPoint{
		Month:   start.Format("2006-01"),
		Label:   start.Format("Jan"),
		Revenue: decimal.Zero,
	}
	for _, s := range stays {
		if s.CheckIn == nil {
			continue
		}
		in := s.CheckIn.In(start.Location())
		if in.Year() != start.Year() || in.Month() != start.Month() {
			continue
		}
		p.BookingCount++
		p.Revenue = p.Revenue.Add(stayContribution(s))
	}
	return p
}
