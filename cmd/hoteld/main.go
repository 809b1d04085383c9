package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hotel-analytics-backend/config"
	"hotel-analytics-backend/internal/api"
	"hotel-analytics-backend/internal/db"
	"hotel-analytics-backend/internal/ingest"
	"hotel-analytics-backend/internal/logger"
	"hotel-analytics-backend/internal/notification"
	"hotel-analytics-backend/internal/report"
	"hotel-analytics-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("failed to set up logging: %v", err)
	}
	log.Infof("configuration loaded successfully from %s", configPath)
	if strings.ToLower(cfg.Log.Level) != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		log.Warn("VAPID keys are not configured, push alerts are disabled")
	} else {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, logger.Component(log, "db"))
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	closers := make([]func() error, 0, 2)

	reportCache, closer := newReportCache(ctx, cfg.Cache, log)
	if closer != nil {
		closers = append(closers, closer)
	}
	reports, err := report.NewService(appStore, reportCache, report.Options{
		TTL:           cfg.Cache.TTL,
		MonthsBack:    cfg.Analytics.MonthsBack,
		DefaultPeriod: cfg.Analytics.DefaultPeriod,
		Timezone:      cfg.Upstream.Timezone,
	}, log)
	if err != nil {
		log.Fatalf("invalid analytics configuration: %v", err)
	}

	var alerts notification.Dispatcher
	if webpushOptions != nil {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions, log)
		pool.Start(ctx)
		alerts = pool
	}

	// Initialize and run the ingest loop in the background with the store
	var syncer api.Syncer
	if cfg.Upstream.Enabled {
		ingestSvc := ingest.NewService(cfg, appStore, alerts, log)
		go ingestSvc.Run(ctx)
		syncer = ingestSvc
	}

	handler := api.NewHandler(appStore, reports, syncer, webpushOptions, log)
	router := api.NewRouter(handler, cfg.Server, log)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		log.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	log.Info("shutdown signal received, stopping services...")
	cancel()

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server Shutdown: %v", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warnf("close: %v", err)
		}
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("server gracefully stopped")
}

// newReportCache selects the report cache backend. An unreachable Redis falls
// back to the in-process cache.
func newReportCache(ctx context.Context, cfg config.CacheConfig, log logrus.FieldLogger) (report.Cache, func() error) {
	switch strings.ToLower(cfg.Backend) {
	case "none":
		log.Info("report cache: none")
		return report.NoopCache{}, nil
	case "redis":
		redisCache := report.NewRedisCache(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := redisCache.Ping(pingCtx); err != nil {
			log.Warnf("redis unavailable (%v), using memory cache", err)
			_ = redisCache.Close()
			break
		}
		log.Info("report cache: redis")
		return redisCache, redisCache.Close
	}
	log.Info("report cache: memory")
	return report.NewMemoryCache(cfg.TTL, 2*cfg.TTL), nil
}
