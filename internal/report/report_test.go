package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hotel-analytics-backend/internal/analytics"
	"hotel-analytics-backend/internal/logger"
	"hotel-analytics-backend/internal/model"
	"hotel-analytics-backend/internal/store"
)

// fakeStore serves a fixed snapshot and counts loads.
type fakeStore struct {
	rev    int64
	revErr error
	snap   analytics.Snapshot
	loads  int
}

func (f *fakeStore) ReplaceSnapshot(context.Context, store.Batch) (int64, error) { return 0, nil }

func (f *fakeStore) LoadSnapshot(context.Context) (analytics.Snapshot, error) {
	f.loads++
	return f.snap, nil
}

func (f *fakeStore) Revision(context.Context) (int64, error) { return f.rev, f.revErr }

func (f *fakeStore) RecordOccupancy(context.Context, model.OccupancySample) (*model.OccupancySample, error) {
	return nil, nil
}

func (f *fakeStore) OccupancyHistory(context.Context, time.Time, time.Time) ([]model.OccupancySample, error) {
	return nil, nil
}

func (f *fakeStore) DB() *gorm.DB { return nil }

// brokenCache fails every call.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (*analytics.Report, bool, error) {
	return nil, false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, *analytics.Report, time.Duration) error {
	return errors.New("cache down")
}

var now = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func snapshot() analytics.Snapshot {
	in := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 2)
	return analytics.Snapshot{
		Stays: []analytics.StayRecord{{
			ID: "s1", Adults: 2, CheckIn: &in, CheckOut: &out,
			Status: analytics.StayCheckedOut, PaymentStatus: analytics.PaymentPaid,
			TotalAmount: decimal.NewNullDecimal(decimal.NewFromInt(300)),
		}},
		Orders:   []analytics.OrderRecord{},
		Services: []analytics.ScheduledServiceRecord{},
		Rooms:    []analytics.RoomRecord{{ID: "r1", Status: analytics.RoomOccupied}, {ID: "r2", Status: analytics.RoomAvailable}},
	}
}

func newTestService(t *testing.T, st store.Store, c Cache) *Service {
	t.Helper()
	svc, err := NewService(st, c, Options{TTL: time.Minute, MonthsBack: 3, DefaultPeriod: "90d"}, logger.Discard())
	require.NoError(t, err)
	svc.now = func() time.Time { return now }
	return svc
}

func TestService_SummaryIsMemoisedPerRevision(t *testing.T) {
	st := &fakeStore{rev: 1, snap: snapshot()}
	svc := newTestService(t, st, NewMemoryCache(time.Minute, time.Minute))
	ctx := context.Background()

	first, err := svc.Summary(ctx, analytics.PeriodMonth, 3)
	require.NoError(t, err)
	assert.True(t, first.Revenue.Total.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "50.0", first.Occupancy.Rate)
	assert.Len(t, first.Monthly, 3)

	second, err := svc.Summary(ctx, analytics.PeriodMonth, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, st.loads, "same revision is served from cache")

	_, err = svc.Summary(ctx, analytics.PeriodWeek, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, st.loads, "period is part of the key")

	st.rev = 2
	_, err = svc.Summary(ctx, analytics.PeriodMonth, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, st.loads, "a new revision recomputes")
}

func TestService_SummaryBeforeFirstSync(t *testing.T) {
	st := &fakeStore{revErr: store.ErrNoSnapshot, snap: analytics.Snapshot{
		Stays: []analytics.StayRecord{}, Orders: []analytics.OrderRecord{},
		Services: []analytics.ScheduledServiceRecord{}, Rooms: []analytics.RoomRecord{},
	}}
	svc := newTestService(t, st, nil)

	r, err := svc.Summary(context.Background(), analytics.PeriodAll, 6)
	require.NoError(t, err)
	assert.True(t, r.Revenue.Total.IsZero())
	assert.Equal(t, "0.0", r.Occupancy.Rate)
}

func TestService_SummaryErrors(t *testing.T) {
	boom := errors.New("db gone")
	svc := newTestService(t, &fakeStore{revErr: boom}, nil)
	_, err := svc.Summary(context.Background(), analytics.PeriodAll, 6)
	assert.ErrorIs(t, err, boom)

	svc = newTestService(t, &fakeStore{rev: 1, snap: analytics.Snapshot{}}, nil)
	_, err = svc.Summary(context.Background(), analytics.PeriodAll, 6)
	assert.ErrorIs(t, err, analytics.ErrNilCollection)
}

func TestService_SummarySurvivesCacheFailure(t *testing.T) {
	st := &fakeStore{rev: 1, snap: snapshot()}
	svc := newTestService(t, st, brokenCache{})

	r, err := svc.Summary(context.Background(), analytics.PeriodAll, 3)
	require.NoError(t, err)
	assert.True(t, r.Revenue.Stays.Equal(decimal.NewFromInt(300)))
}

func TestService_SummaryUsesHotelCalendar(t *testing.T) {
	// Stored dates are the hotel's wall clock.
	in := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 1)
	st := &fakeStore{rev: 1, snap: analytics.Snapshot{
		Stays: []analytics.StayRecord{{
			ID: "s1", CheckIn: &in, CheckOut: &out,
			Status: analytics.StayCheckedOut, PaymentStatus: analytics.PaymentPaid,
			RoomRateAtPayment: decimal.NewNullDecimal(decimal.NewFromInt(80)),
		}},
		Orders:   []analytics.OrderRecord{},
		Services: []analytics.ScheduledServiceRecord{},
		Rooms:    []analytics.RoomRecord{},
	}}

	svc, err := NewService(st, nil, Options{MonthsBack: 2, Timezone: "Europe/Berlin"}, logger.Discard())
	require.NoError(t, err)
	// Already 1 November in Berlin.
	svc.now = func() time.Time { return time.Date(2024, 10, 31, 23, 30, 0, 0, time.UTC) }

	r, err := svc.Summary(context.Background(), analytics.PeriodWeek, 2)
	require.NoError(t, err)
	require.Len(t, r.Monthly, 2)
	assert.Equal(t, "2024-11", r.Monthly[1].Month)
	assert.Equal(t, 1, r.Monthly[1].BookingCount)
	assert.True(t, r.Revenue.Stays.Equal(decimal.NewFromInt(80)), "check-in is inside the last 7 days")
}

func TestNewService_RejectsUnknownTimezone(t *testing.T) {
	_, err := NewService(&fakeStore{}, nil, Options{Timezone: "Mars/Olympus"}, logger.Discard())
	assert.Error(t, err)
}

func TestService_Resolve(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, nil)

	p, err := svc.ResolvePeriod("")
	require.NoError(t, err)
	assert.Equal(t, analytics.PeriodQuarter, p)

	p, err = svc.ResolvePeriod("1Y")
	require.NoError(t, err)
	assert.Equal(t, analytics.PeriodYear, p)

	_, err = svc.ResolvePeriod("fortnight")
	assert.ErrorIs(t, err, analytics.ErrUnknownPeriod)

	m, err := svc.ResolveMonths("")
	require.NoError(t, err)
	assert.Equal(t, 3, m)

	m, err = svc.ResolveMonths("12")
	require.NoError(t, err)
	assert.Equal(t, 12, m)

	for _, bad := range []string{"0", "-1", "121", "six"} {
		_, err := svc.ResolveMonths(bad)
		assert.ErrorIs(t, err, ErrInvalidMonths, bad)
	}
}

func TestNewService_RejectsUnknownDefaultPeriod(t *testing.T) {
	_, err := NewService(&fakeStore{}, nil, Options{DefaultPeriod: "2w"}, logger.Discard())
	assert.ErrorIs(t, err, analytics.ErrUnknownPeriod)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	r := &analytics.Report{Period: analytics.PeriodWeek}
	require.NoError(t, c.Set(ctx, "k", r, time.Minute))
	require.NoError(t, c.Set(ctx, "nil", nil, time.Minute))

	got, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, analytics.PeriodWeek, got.Period)

	_, found, _ = c.Get(ctx, "nil")
	assert.False(t, found)
}

func TestRedisCache_Unreachable(t *testing.T) {
	c := NewRedisCache("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))
	_, found, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, found)
}
