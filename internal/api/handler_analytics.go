package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-analytics-backend/internal/analytics"
	"hotel-analytics-backend/internal/report"
)

// loadReport resolves ?period= and ?months= and fetches the report. It writes
// the error response itself and returns false on failure.
func (h *Handler) loadReport(c *gin.Context) (*analytics.Report, int, bool) {
	period, err := h.reports.ResolvePeriod(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, 0, false
	}
	months, err := h.reports.ResolveMonths(c.Query("months"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, 0, false
	}

	r, err := h.reports.Summary(c.Request.Context(), period, months)
	if err != nil {
		h.fail(c, err)
		return nil, 0, false
	}
	return r, months, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, analytics.ErrUnknownPeriod), errors.Is(err, report.ErrInvalidMonths):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// GetSummary returns the full dashboard report.
func (h *Handler) GetSummary(c *gin.Context) {
	r, _, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r)
}

// GetRevenue returns the revenue breakdown for the period.
func (h *Handler) GetRevenue(c *gin.Context) {
	r, _, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": r.Period, "revenue": r.Revenue})
}

// GetMonthly returns the trailing monthly revenue series.
func (h *Handler) GetMonthly(c *gin.Context) {
	r, months, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": months, "monthly": r.Monthly})
}

// GetBookings returns booking counts by status and the average stay length.
func (h *Handler) GetBookings(c *gin.Context) {
	r, _, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"period":            r.Period,
		"bookings":          r.Bookings,
		"averageStayLength": r.AverageStayLength,
	})
}

// GetDemographics returns guest composition for the period.
func (h *Handler) GetDemographics(c *gin.Context) {
	r, _, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": r.Period, "demographics": r.Demographics})
}

// GetOccupancy returns the current room occupancy.
func (h *Handler) GetOccupancy(c *gin.Context) {
	r, _, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r.Occupancy)
}

// GetKPIs returns ADR, RevPAR and average order value for the period.
func (h *Handler) GetKPIs(c *gin.Context) {
	r, _, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": r.Period, "kpis": r.KPIs})
}
