package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHealth reports database reachability and the current snapshot revision.
func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()
	if db := h.store.DB(); db != nil {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}

	rev, err := h.reports.Revision(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "revision": rev})
}
