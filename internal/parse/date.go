package parse

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the timestamp shapes seen in upstream payloads, most
// specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
}

// ParseDate converts an upstream date string into a time. Empty input yields
// (nil, nil) so absent dates stay absent. Layouts without an offset are
// interpreted in loc.
func ParseDate(raw string, loc *time.Location) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unable to parse date: %q", raw)
}

// WallClock returns the calendar date and clock reading of t in loc, labelled
// UTC. Hotel dates are stored this way so that night counts and month
// boundaries follow the hotel's calendar regardless of DST or server zone.
func WallClock(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
