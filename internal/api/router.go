package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"hotel-analytics-backend/config"
	"hotel-analytics-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestID(), mw.Logger(log.WithField("component", "http")))

	// Initialize middleware
	rateLimiter := mw.RateLimiter(mw.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, 10*time.Minute))

	// Responses are keyed by snapshot revision, so the TTL only bounds how
	// long a period window may lag behind the clock.
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl, func(c *gin.Context) string {
		rev, err := h.reports.Revision(c.Request.Context())
		if err != nil {
			return "err"
		}
		return strconv.FormatInt(rev, 10)
	})

	r.GET("/healthz", h.GetHealth)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		analytics := api.Group("/analytics", caching)
		analytics.GET("/summary", h.GetSummary)
		analytics.GET("/revenue", h.GetRevenue)
		analytics.GET("/monthly", h.GetMonthly)
		analytics.GET("/bookings", h.GetBookings)
		analytics.GET("/demographics", h.GetDemographics)
		analytics.GET("/occupancy", h.GetOccupancy)
		analytics.GET("/kpis", h.GetKPIs)

		api.GET("/occupancy/history", h.GetOccupancyHistory)
		api.POST("/sync", h.PostSync)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
