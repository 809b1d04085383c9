// Package report serves dashboard reports computed from the stored snapshot,
// memoised per snapshot revision.
package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"hotel-analytics-backend/internal/analytics"
	"hotel-analytics-backend/internal/parse"
	"hotel-analytics-backend/internal/store"
)

// MaxMonthsBack caps the monthly series length a caller may request.
const MaxMonthsBack = 120

// ErrInvalidMonths is returned for a months value outside 1..MaxMonthsBack.
var ErrInvalidMonths = errors.New("invalid months")

// Service builds reports and caches them under the snapshot revision.
type Service struct {
	store         store.Store
	cache         Cache
	ttl           time.Duration
	monthsBack    int
	defaultPeriod analytics.Period
	loc           *time.Location
	log           logrus.FieldLogger
	now           func() time.Time
}

// Options configures a Service. Timezone names the hotel's zone, in whose
// wall clock stored dates are kept.
type Options struct {
	TTL           time.Duration
	MonthsBack    int
	DefaultPeriod string
	Timezone      string
}

// NewService creates a report service. A nil cache disables caching.
func NewService(s store.Store, c Cache, opts Options, log logrus.FieldLogger) (*Service, error) {
	if c == nil {
		c = NoopCache{}
	}
	def := analytics.PeriodMonth
	if opts.DefaultPeriod != "" {
		p, err := analytics.ParsePeriod(opts.DefaultPeriod)
		if err != nil {
			return nil, fmt.Errorf("default period: %w", err)
		}
		def = p
	}
	loc := time.UTC
	if opts.Timezone != "" {
		l, err := time.LoadLocation(opts.Timezone)
		if err != nil {
			return nil, fmt.Errorf("timezone: %w", err)
		}
		loc = l
	}
	months := opts.MonthsBack
	if months <= 0 {
		months = analytics.DefaultMonthsBack
	}
	return &Service{
		store:         s,
		cache:         c,
		ttl:           opts.TTL,
		monthsBack:    months,
		defaultPeriod: def,
		loc:           loc,
		log:           log.WithField("component", "report"),
		now:           time.Now,
	}, nil
}

// ResolvePeriod parses a period query value. An empty value selects the
// configured default period.
func (s *Service) ResolvePeriod(raw string) (analytics.Period, error) {
	if strings.TrimSpace(raw) == "" {
		return s.defaultPeriod, nil
	}
	return analytics.ParsePeriod(raw)
}

// ResolveMonths parses a months query value. An empty value selects the
// configured default.
func (s *Service) ResolveMonths(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return s.monthsBack, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > MaxMonthsBack {
		return 0, fmt.Errorf("%w: %q (want 1..%d)", ErrInvalidMonths, raw, MaxMonthsBack)
	}
	return n, nil
}

// Revision returns the current snapshot revision, 0 before the first sync.
func (s *Service) Revision(ctx context.Context) (int64, error) {
	rev, err := s.store.Revision(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		return 0, nil
	}
	return rev, err
}

func cacheKey(rev int64, p analytics.Period, months int) string {
	return fmt.Sprintf("%d:%s:%d", rev, p, months)
}

// Summary returns the report for the period, computing it at most once per
// snapshot revision and cache lifetime. Cache failures degrade to a fresh
// computation.
func (s *Service) Summary(ctx context.Context, p analytics.Period, months int) (*analytics.Report, error) {
	rev, err := s.Revision(ctx)
	if err != nil {
		return nil, fmt.Errorf("load revision: %w", err)
	}
	key := cacheKey(rev, p, months)
	log := s.log.WithField("key", key)

	cached, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.WithError(err).Warn("report cache read failed")
	} else if found {
		return cached, nil
	}

	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	// Periods and months follow the hotel's calendar.
	now := s.now()
	r, err := analytics.BuildReport(snap, p, parse.WallClock(now, s.loc), months)
	if err != nil {
		return nil, err
	}
	r.GeneratedAt = now.UTC()

	if err := s.cache.Set(ctx, key, &r, s.ttl); err != nil {
		log.WithError(err).Warn("report cache write failed")
	}
	log.Debug("report computed")
	return &r, nil
}
