package analytics

import (
	"fmt"
	"strings"
	"time"
)

// Period is a dashboard reporting window ending at "now".
type Period string

const (
	PeriodWeek    Period = "7d"
	PeriodMonth   Period = "30d"
	PeriodQuarter Period = "90d"
	PeriodYear    Period = "1y"
	PeriodAll     Period = "all"
)

// ParsePeriod accepts the dashboard's period values. An empty string means
// PeriodAll.
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PeriodAll, nil
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, raw)
	}
}

// Range returns the inclusive window [from, now]. bounded is false for
// PeriodAll.
func (p Period) Range(now time.Time) (from time.Time, bounded bool) {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), true
	case PeriodMonth:
		return now.AddDate(0, 0, -30), true
	case PeriodQuarter:
		return now.AddDate(0, 0, -90), true
	case PeriodYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// FilterByPeriod returns a new snapshot restricted to records dated inside
// the period: stays by check-in, orders by placement, services by schedule.
// Undated records only survive PeriodAll. Rooms are a point-in-time inventory
// and are passed through unchanged.
func FilterByPeriod(s Snapshot, p Period, now time.Time) Snapshot {
	from, bounded := p.Range(now)
	if !bounded {
		return s
	}
	in := func(t *time.Time) bool {
		return t != nil && !t.Before(from) && !t.After(now)
	}

	out := Snapshot{
		Stays:    make([]StayRecord, 0, len(s.Stays)),
		Orders:   make([]OrderRecord, 0, len(s.Orders)),
		Services: make([]ScheduledServiceRecord, 0, len(s.Services)),
		Rooms:    s.Rooms,
	}
	for _, st := range s.Stays {
		if in(st.CheckIn) {
			out.Stays = append(out.Stays, st)
		}
	}
	for _, o := range s.Orders {
		if in(o.PlacedAt) {
			out.Orders = append(out.Orders, o)
		}
	}
	for _, sv := range s.Services {
		if in(sv.ScheduledAt) {
			out.Services = append(out.Services, sv)
		}
	}
	return out
}
