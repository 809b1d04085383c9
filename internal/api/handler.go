package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"hotel-analytics-backend/internal/ingest"
	"hotel-analytics-backend/internal/report"
	"hotel-analytics-backend/internal/store"
)

// Syncer runs one ingest cycle on demand.
type Syncer interface {
	SyncOnce(ctx context.Context) (*ingest.Result, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	reports *report.Service
	syncer  Syncer
	webpush *webpush.Options
	log     logrus.FieldLogger
}

// NewHandler creates a new API handler. syncer may be nil when upstream sync
// is disabled.
func NewHandler(s store.Store, reports *report.Service, syncer Syncer, webpushOptions *webpush.Options, log logrus.FieldLogger) *Handler {
	return &Handler{
		store:   s,
		reports: reports,
		syncer:  syncer,
		webpush: webpushOptions,
		log:     log.WithField("component", "api"),
	}
}
