package analytics

import "time"

// Report is the full dashboard payload for one period.
type Report struct {
	Period            Period                 `json:"period"`
	GeneratedAt       time.Time              `json:"generatedAt"`
	Revenue           RevenueBreakdown       `json:"revenue"`
	Bookings          BookingStatusBreakdown `json:"bookings"`
	AverageStayLength float64                `json:"averageStayLength"`
	Monthly           []MonthlyPoint         `json:"monthly"`
	Demographics      Demographics           `json:"demographics"`
	Occupancy         OccupancySummary       `json:"occupancy"`
	KPIs              KPIs                   `json:"kpis"`
}

// BuildReport validates the snapshot and computes every metric. Period-scoped
// metrics use the filtered records; the monthly series always covers the
// trailing monthsBack months and occupancy always reflects the current rooms.
func BuildReport(s Snapshot, p Period, now time.Time, monthsBack int) (Report, error) {
	if err := s.Validate(); err != nil {
		return Report{}, err
	}

	scoped := FilterByPeriod(s, p, now)
	r := Report{
		Period:            p,
		GeneratedAt:       now,
		Revenue:           TotalRevenue(scoped.Stays, scoped.Orders, scoped.Services),
		Bookings:          BookingsByStatus(scoped.Stays),
		AverageStayLength: AverageStayLength(scoped.Stays),
		Monthly:           MonthlyRevenue(s.Stays, monthsBack, now),
		Demographics:      GuestDemographics(scoped.Stays),
		Occupancy:         Occupancy(s.Rooms),
	}
	r.KPIs = ComputeKPIs(r.Revenue.Stays, r.Bookings.Total, r.AverageStayLength, r.Occupancy.TotalRooms, scoped.Orders)
	return r, nil
}
