package analytics

import "github.com/shopspring/decimal"

// BookingStatusBreakdown partitions stays by status. Stays with any other
// status are not bucketed but still count towards Total.
type BookingStatusBreakdown struct {
	Confirmed  int `json:"confirmed"`
	CheckedIn  int `json:"checkedIn"`
	CheckedOut int `json:"checkedOut"`
	Cancelled  int `json:"cancelled"`
	Total      int `json:"total"`
}

// BookingsByStatus counts stays per lifecycle status.
func BookingsByStatus(stays []StayRecord) BookingStatusBreakdown {
	b := BookingStatusBreakdown{Total: len(stays)}
	for _, s := range stays {
		switch s.Status {
		case StayConfirmed:
			b.Confirmed++
		case StayCheckedIn:
			b.CheckedIn++
		case StayCheckedOut:
			b.CheckedOut++
		case StayCancelled:
			b.Cancelled++
		}
	}
	return b
}

// AverageStayLength averages the nights of stays that actually checked in.
// Unlike revenue, nights are not floored at one here.
func AverageStayLength(stays []StayRecord) float64 {
	var nights, count int
	for _, s := range stays {
		if s.Status != StayCheckedIn && s.Status != StayCheckedOut {
			continue
		}
		if s.CheckIn == nil || s.CheckOut == nil {
			continue
		}
		nights += spanNights(*s.CheckIn, *s.CheckOut)
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(nights) / float64(count)
}

// Demographics summarises the guests across all stays.
type Demographics struct {
	TotalAdults   int    `json:"totalAdults"`
	TotalChildren int    `json:"totalChildren"`
	TotalGuests   int    `json:"totalGuests"`
	AdultPct      string `json:"adultPct"`
	ChildPct      string `json:"childPct"`
}

// GuestDemographics sums adults and children regardless of status or payment.
func GuestDemographics(stays []StayRecord) Demographics {
	var d Demographics
	for _, s := range stays {
		d.TotalAdults += s.Adults
		d.TotalChildren += s.Children
	}
	d.TotalGuests = d.TotalAdults + d.TotalChildren

	if d.TotalGuests == 0 {
		d.AdultPct, d.ChildPct = "0", "0"
		return d
	}
	d.AdultPct = percent(d.TotalAdults, d.TotalGuests)
	d.ChildPct = percent(d.TotalChildren, d.TotalGuests)
	return d
}

// percent formats part/whole x 100 with one decimal. whole must be positive.
func percent(part, whole int) string {
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(whole)), 1).
		StringFixed(1)
}
