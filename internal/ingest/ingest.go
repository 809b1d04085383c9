// Package ingest mirrors the upstream hotel management API into the store.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-analytics-backend/config"
	"hotel-analytics-backend/internal/analytics"
	"hotel-analytics-backend/internal/model"
	"hotel-analytics-backend/internal/notification"
	"hotel-analytics-backend/internal/store"
)

// ErrSyncInProgress is returned by SyncOnce when another cycle is running.
var ErrSyncInProgress = errors.New("sync already in progress")

// Result summarises one completed ingest cycle.
type Result struct {
	RunID     string                     `json:"runId"`
	Revision  int64                      `json:"revision"`
	Stays     int                        `json:"stays"`
	Orders    int                        `json:"orders"`
	Services  int                        `json:"services"`
	Rooms     int                        `json:"rooms"`
	Occupancy analytics.OccupancySummary `json:"occupancy"`
	Alert     string                     `json:"alert,omitempty"`
}

// Service orchestrates the ingest cycle.
type Service struct {
	cfg    *config.Config
	store  store.Store
	client *http.Client
	alerts notification.Dispatcher
	loc    *time.Location
	log    logrus.FieldLogger
	now    func() time.Time

	mu sync.Mutex
}

// NewService creates and initializes a new ingest service. alerts may be nil.
func NewService(cfg *config.Config, s store.Store, alerts notification.Dispatcher, log logrus.FieldLogger) *Service {
	log = log.WithField("component", "ingest")

	var transport http.RoundTripper = &http.Transport{}
	if cfg.Upstream.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.Upstream.HTTPProxy)
		if err != nil {
			log.Warnf("invalid proxy URL %q: %v, not using a proxy", cfg.Upstream.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	loc, err := time.LoadLocation(cfg.Upstream.Timezone)
	if err != nil {
		log.Warnf("failed to load timezone %q: %v, using UTC", cfg.Upstream.Timezone, err)
		loc = time.UTC
	}

	timeout := time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Service{
		cfg:   cfg,
		store: s,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		alerts: alerts,
		loc:    loc,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run starts the ingest process in a loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Upstream.Enabled {
		s.log.Info("upstream sync is disabled, not starting")
		return
	}
	s.log.Info("starting ingest service")

	s.syncAndLog(ctx)

	timer := time.NewTimer(s.cfg.Upstream.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("ingest service shutting down")
			return
		case <-timer.C:
			s.syncAndLog(ctx)
			timer.Reset(s.cfg.Upstream.Interval)
		}
	}
}

func (s *Service) syncAndLog(ctx context.Context) {
	if _, err := s.SyncOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.WithError(err).Error("sync cycle failed")
	}
}

// SyncOnce fetches every collection, replaces the stored snapshot, samples
// occupancy and dispatches threshold alerts. If any fetch fails, the stored
// state is left untouched.
func (s *Service) SyncOnce(ctx context.Context) (*Result, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	runID := uuid.NewString()
	log := s.log.WithField("run_id", runID)
	started := s.now()
	log.Info("executing sync cycle")

	conv := converter{loc: s.loc, log: log}
	eps := s.cfg.Upstream.Endpoints

	stays, err := fetchAll[StayItem](ctx, s, eps.Stays)
	if err != nil {
		return nil, fmt.Errorf("fetch stays: %w", err)
	}
	orders, err := fetchAll[OrderItem](ctx, s, eps.Orders)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	services, err := fetchAll[ServiceItem](ctx, s, eps.Services)
	if err != nil {
		return nil, fmt.Errorf("fetch scheduled services: %w", err)
	}
	rooms, err := fetchAll[RoomItem](ctx, s, eps.Rooms)
	if err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}

	batch := store.Batch{
		RunID:     runID,
		StartedAt: started,
		Stays:     convertAll(log, stays, conv.stay, func(m model.Stay) string { return m.ID }),
		Orders:    convertAll(log, orders, conv.order, func(m model.Order) string { return m.ID }),
		Services:  convertAll(log, services, conv.service, func(m model.ScheduledService) string { return m.ID }),
		Rooms:     convertAll(log, rooms, conv.room, func(m model.Room) string { return m.ID }),
	}

	rev, err := s.store.ReplaceSnapshot(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("replace snapshot: %w", err)
	}

	res := &Result{
		RunID:    runID,
		Revision: rev,
		Stays:    len(batch.Stays),
		Orders:   len(batch.Orders),
		Services: len(batch.Services),
		Rooms:    len(batch.Rooms),
	}
	res.Occupancy, res.Alert = s.sampleOccupancy(ctx, log, rev, batch.Rooms)

	log.WithFields(logrus.Fields{
		"revision": rev,
		"stays":    res.Stays,
		"orders":   res.Orders,
		"services": res.Services,
		"rooms":    res.Rooms,
	}).Info("sync cycle finished")
	return res, nil
}

// sampleOccupancy records the occupancy of the new snapshot and dispatches an
// alert when the rate crosses the configured threshold. It returns the topic
// dispatched, if any.
func (s *Service) sampleOccupancy(ctx context.Context, log logrus.FieldLogger, rev int64, rooms []model.Room) (analytics.OccupancySummary, string) {
	records := make([]analytics.RoomRecord, 0, len(rooms))
	for _, r := range rooms {
		records = append(records, analytics.RoomRecord{ID: r.ID, Number: r.Number, Status: analytics.RoomStatus(r.Status)})
	}
	summary := analytics.Occupancy(records)

	rate, err := decimal.NewFromString(summary.Rate)
	if err != nil {
		log.WithError(err).Error("invalid occupancy rate")
		return summary, ""
	}

	prev, err := s.store.RecordOccupancy(ctx, model.OccupancySample{
		ObservedAt: s.now(),
		Revision:   rev,
		TotalRooms: summary.TotalRooms,
		Occupied:   summary.OccupiedCount,
		Available:  summary.AvailableCount,
		Rate:       rate,
	})
	if err != nil {
		log.WithError(err).Error("failed to record occupancy sample")
		return summary, ""
	}

	threshold := decimal.NewFromFloat(s.cfg.Alerts.OccupancyHighPct)
	high := summary.TotalRooms > 0 && rate.GreaterThanOrEqual(threshold)
	wasHigh := prev != nil && prev.TotalRooms > 0 && prev.Rate.GreaterThanOrEqual(threshold)

	var alert notification.Alert
	switch {
	case high && !wasHigh:
		alert = notification.Alert{
			Topic:   model.TopicOccupancyHigh,
			Title:   "Occupancy high",
			Message: fmt.Sprintf("Occupancy reached %s%% (%d of %d rooms)", summary.Rate, summary.OccupiedCount, summary.TotalRooms),
		}
	case !high && wasHigh:
		alert = notification.Alert{
			Topic:   model.TopicOccupancyNormal,
			Title:   "Occupancy back to normal",
			Message: fmt.Sprintf("Occupancy dropped to %s%% (%d of %d rooms)", summary.Rate, summary.OccupiedCount, summary.TotalRooms),
		}
	default:
		return summary, ""
	}

	if s.alerts != nil {
		log.WithField("topic", alert.Topic).Info("dispatching occupancy alert")
		s.alerts.Dispatch(alert)
	}
	return summary, alert.Topic
}

// fetchAll pages through one upstream collection.
func fetchAll[T any](ctx context.Context, s *Service, path string) ([]T, error) {
	var all []T
	total := 1
	pageSize := s.cfg.Upstream.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	for page := 1; (page-1)*pageSize < total; page++ {
		resp, err := fetchPage[T](ctx, s, path, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		all = append(all, resp.Data.Items...)
		s.log.WithField("path", path).Debugf("fetched page %d, %d/%d items", page, len(all), total)
	}
	return all, nil
}

// fetchPage fetches a single page of one collection from the upstream API.
func fetchPage[T any](ctx context.Context, s *Service, path string, page, pageSize int) (*ApiResponse[T], error) {
	u, err := url.Parse(strings.TrimRight(s.cfg.Upstream.BaseURL, "/") + path)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range s.cfg.Upstream.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp ApiResponse[T]
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal api response: %w", err)
	}

	if apiResp.Code != 0 {
		return nil, fmt.Errorf("API returned non-zero application code %d: %s", apiResp.Code, apiResp.Message)
	}

	return &apiResp, nil
}
