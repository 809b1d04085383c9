package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hotel-analytics-backend/config"
	"hotel-analytics-backend/internal/analytics"
	"hotel-analytics-backend/internal/logger"
	"hotel-analytics-backend/internal/model"
	"hotel-analytics-backend/internal/notification"
	"hotel-analytics-backend/internal/parse"
	"hotel-analytics-backend/internal/store"
)

// mockStore is a mock implementation of the store.Store interface.
type mockStore struct {
	mu         sync.Mutex
	batches    []store.Batch
	samples    []model.OccupancySample
	replaceErr error
}

func (m *mockStore) ReplaceSnapshot(ctx context.Context, batch store.Batch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return 0, m.replaceErr
	}
	m.batches = append(m.batches, batch)
	return int64(len(m.batches)), nil
}

func (m *mockStore) LoadSnapshot(ctx context.Context) (analytics.Snapshot, error) {
	return analytics.Snapshot{}, errors.New("not used")
}

func (m *mockStore) Revision(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.batches)), nil
}

func (m *mockStore) RecordOccupancy(ctx context.Context, sample model.OccupancySample) (*model.OccupancySample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var prev *model.OccupancySample
	if n := len(m.samples); n > 0 {
		p := m.samples[n-1]
		prev = &p
	}
	m.samples = append(m.samples, sample)
	return prev, nil
}

func (m *mockStore) OccupancyHistory(ctx context.Context, from, to time.Time) ([]model.OccupancySample, error) {
	return nil, nil
}

func (m *mockStore) DB() *gorm.DB {
	return nil // Not needed for these tests
}

// recordingDispatcher collects dispatched alerts.
type recordingDispatcher struct {
	mu     sync.Mutex
	alerts []notification.Alert
}

func (d *recordingDispatcher) Dispatch(a notification.Alert) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, a)
}

func (d *recordingDispatcher) topics() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.alerts))
	for _, a := range d.alerts {
		out = append(out, a.Topic)
	}
	return out
}

// upstream is a fake hotel API serving fixed collections in pages.
type upstream struct {
	mu          sync.Mutex
	collections map[string][]any
	failPath    string
	requests    []string
}

func (u *upstream) setRooms(rooms ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.collections["/rooms"] = rooms
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.requests = append(u.requests, r.URL.Path+"?"+r.URL.RawQuery)

	if r.Header.Get("X-Api-Key") != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if r.URL.Path == u.failPath {
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	items := u.collections[r.URL.Path]
	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))

	resp := map[string]any{
		"code": 0,
		"data": map[string]any{
			"page":     page,
			"pageSize": size,
			"total":    len(items),
			"items":    items[start:end],
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newUpstream() *upstream {
	return &upstream{collections: map[string][]any{
		"/stays": {
			map[string]any{"id": "s1", "guestName": "Ada", "adults": 2, "children": 1,
				"checkIn": "2024-03-01 14:00:00", "checkOut": "2024-03-04", "status": "Checked Out",
				"paymentStatus": "PAID", "totalAmount": "450.00", "roomRateAtPayment": 150},
			map[string]any{"id": 2, "guestName": "Bo", "adults": 1, "checkIn": "not a date",
				"status": "confirmed", "paymentStatus": "pending", "totalAmount": nil},
			map[string]any{"guestName": "No Id"},
			map[string]any{"id": "s1", "guestName": "Duplicate"},
		},
		"/orders": {
			map[string]any{"id": "o1", "status": "paid", "placedAt": "2024-03-02T19:00:00Z", "discount": "5",
				"items": []any{map[string]any{"name": "Pasta", "unitPrice": "12.50", "quantity": 2}}},
		},
		"/scheduled-services": {
			map[string]any{"id": "v1", "serviceName": "Spa", "scheduledAt": "2024-03-03", "paymentStatus": "pending", "totalAmount": 80},
		},
		"/rooms": {
			map[string]any{"id": "r1", "number": "101", "status": "occupied"},
			map[string]any{"id": "r2", "number": "102", "status": "Vacant"},
			map[string]any{"id": "r3", "number": "103", "status": "out of order"},
		},
	}}
}

func newTestService(t *testing.T, baseURL string, st store.Store, d notification.Dispatcher) *Service {
	t.Helper()
	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			BaseURL:  baseURL,
			Headers:  map[string]string{"X-Api-Key": "secret"},
			PageSize: 2,
			Timezone: "Europe/Berlin",
			Endpoints: config.EndpointsConfig{
				Stays: "/stays", Orders: "/orders", Services: "/scheduled-services", Rooms: "/rooms",
			},
		},
		Alerts: config.AlertsConfig{OccupancyHighPct: 60},
	}
	svc := NewService(cfg, st, d, logger.Discard())
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_SyncOnce(t *testing.T) {
	up := newUpstream()
	server := httptest.NewServer(up)
	defer server.Close()

	st := &mockStore{}
	d := &recordingDispatcher{}
	svc := newTestService(t, server.URL, st, d)

	res, err := svc.SyncOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Revision)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 2, res.Stays, "the id-less record and the duplicate are skipped")
	assert.Equal(t, 1, res.Orders)
	assert.Equal(t, 1, res.Services)
	assert.Equal(t, 3, res.Rooms)
	assert.Contains(t, up.requests, "/stays?page=2&pageSize=2", "stays span two pages")

	require.Len(t, st.batches, 1)
	batch := st.batches[0]
	assert.Equal(t, res.RunID, batch.RunID)

	ada := batch.Stays[0]
	assert.Equal(t, "s1", ada.ID)
	assert.Equal(t, string(analytics.StayCheckedOut), ada.Status)
	assert.Equal(t, string(analytics.PaymentPaid), ada.PaymentStatus)
	require.NotNil(t, ada.CheckIn)
	assert.Equal(t, time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC), *ada.CheckIn, "naive dates keep the hotel's wall clock")
	assert.True(t, ada.TotalAmount.Decimal.Equal(decimal.RequireFromString("450")))
	assert.True(t, ada.RoomRateAtPayment.Decimal.Equal(decimal.RequireFromString("150")))

	bo := batch.Stays[1]
	assert.Equal(t, "2", bo.ID, "numeric ids are accepted")
	assert.Nil(t, bo.CheckIn, "unparseable dates are dropped")
	assert.False(t, bo.TotalAmount.Valid)

	order := batch.Orders[0]
	require.Len(t, order.Items, 1)
	assert.Equal(t, "o1", order.Items[0].OrderID)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
	require.NotNil(t, order.PlacedAt)
	assert.Equal(t, time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC), *order.PlacedAt, "offsets are shifted to the hotel's wall clock")

	assert.Equal(t, string(analytics.RoomAvailable), batch.Rooms[1].Status)
	assert.Equal(t, string(analytics.RoomMaintenance), batch.Rooms[2].Status)

	assert.Equal(t, "33.3", res.Occupancy.Rate)
	require.Len(t, st.samples, 1)
	assert.True(t, st.samples[0].Rate.Equal(decimal.RequireFromString("33.3")))
	assert.Empty(t, d.topics())
}

func stayRecord(m model.Stay) analytics.StayRecord {
	return analytics.StayRecord{
		ID:                m.ID,
		CheckIn:           m.CheckIn,
		CheckOut:          m.CheckOut,
		Status:            analytics.StayStatus(m.Status),
		PaymentStatus:     analytics.PaymentStatus(m.PaymentStatus),
		TotalAmount:       m.TotalAmount,
		RoomRateAtPayment: m.RoomRateAtPayment,
	}
}

func TestConverter_KeepsHotelCalendar(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	conv := converter{loc: berlin, log: logger.Discard()}
	str := func(s string) *string { return &s }

	// The night of the autumn clock change.
	dst, err := conv.stay(StayItem{
		ID: "s1", CheckIn: str("2024-10-27"), CheckOut: str("2024-10-28"),
		Status: "checked out", PaymentStatus: "paid",
		RoomRateAtPayment: decimal.NewNullDecimal(decimal.NewFromInt(50)),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 27, 0, 0, 0, 0, time.UTC), *dst.CheckIn)

	firstOfMonth, err := conv.stay(StayItem{
		ID: "s2", CheckIn: str("2024-11-01"), CheckOut: str("2024-11-02"),
		Status: "checked out", PaymentStatus: "paid",
		RoomRateAtPayment: decimal.NewNullDecimal(decimal.NewFromInt(80)),
	})
	require.NoError(t, err)

	stays := []analytics.StayRecord{stayRecord(dst)}
	assert.True(t, analytics.StayRevenue(stays).Equal(decimal.NewFromInt(50)), "one night, not two")
	assert.Equal(t, 1.0, analytics.AverageStayLength(stays))

	now := parse.WallClock(time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC), berlin)
	points := analytics.MonthlyRevenue([]analytics.StayRecord{stayRecord(dst), stayRecord(firstOfMonth)}, 2, now)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-10", points[0].Month)
	assert.Equal(t, 1, points[0].BookingCount)
	assert.True(t, points[0].Revenue.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "2024-11", points[1].Month)
	assert.Equal(t, 1, points[1].BookingCount)
	assert.True(t, points[1].Revenue.Equal(decimal.NewFromInt(80)))
}

func TestService_SyncOnceOccupancyAlerts(t *testing.T) {
	up := newUpstream()
	server := httptest.NewServer(up)
	defer server.Close()

	st := &mockStore{}
	d := &recordingDispatcher{}
	svc := newTestService(t, server.URL, st, d)
	ctx := context.Background()

	occupied := func(id string) any { return map[string]any{"id": id, "status": "occupied"} }
	available := func(id string) any { return map[string]any{"id": id, "status": "available"} }

	steps := []struct {
		name  string
		rooms []any
		alert string
	}{
		{"below threshold", []any{occupied("r1"), available("r2"), available("r3")}, ""},
		{"crosses up", []any{occupied("r1"), occupied("r2"), available("r3")}, model.TopicOccupancyHigh},
		{"stays high", []any{occupied("r1"), occupied("r2"), occupied("r3")}, ""},
		{"drops back", []any{occupied("r1"), available("r2"), available("r3")}, model.TopicOccupancyNormal},
		{"no rooms", []any{}, ""},
	}
	for _, step := range steps {
		up.setRooms(step.rooms...)
		res, err := svc.SyncOnce(ctx)
		require.NoError(t, err, step.name)
		assert.Equal(t, step.alert, res.Alert, step.name)
	}
	assert.Equal(t, []string{model.TopicOccupancyHigh, model.TopicOccupancyNormal}, d.topics())
}

func TestService_SyncOnceAbortsOnFetchError(t *testing.T) {
	up := newUpstream()
	up.failPath = "/rooms"
	server := httptest.NewServer(up)
	defer server.Close()

	st := &mockStore{}
	svc := newTestService(t, server.URL, st, nil)

	_, err := svc.SyncOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch rooms")
	assert.Empty(t, st.batches, "a failed fetch must not replace stored state")
	assert.Empty(t, st.samples)
}

func TestService_SyncOnceStoreError(t *testing.T) {
	server := httptest.NewServer(newUpstream())
	defer server.Close()

	boom := errors.New("disk full")
	st := &mockStore{replaceErr: boom}
	svc := newTestService(t, server.URL, st, nil)

	_, err := svc.SyncOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, st.samples)
}

func TestService_SyncOnceRejectsApplicationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":42,"message":"maintenance window","data":{}}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, &mockStore{}, nil)
	_, err := svc.SyncOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maintenance window")
}

func TestService_SyncOnceIsExclusive(t *testing.T) {
	svc := newTestService(t, "http://127.0.0.1:0", &mockStore{}, nil)
	svc.mu.Lock()
	defer svc.mu.Unlock()

	_, err := svc.SyncOnce(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)
}

func TestRecordID_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		in   string
		want RecordID
	}{
		{`"abc"`, "abc"},
		{`42`, "42"},
		{`null`, ""},
	}
	for _, tc := range testCases {
		var id RecordID
		require.NoError(t, json.Unmarshal([]byte(tc.in), &id), tc.in)
		assert.Equal(t, tc.want, id)
	}

	var id RecordID
	assert.Error(t, json.Unmarshal([]byte(`{}`), &id))
}
