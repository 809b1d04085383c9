package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-analytics-backend/internal/ingest"
)

// PostSync runs one ingest cycle and returns its result.
func (h *Handler) PostSync(c *gin.Context) {
	if h.syncer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upstream sync is disabled"})
		return
	}

	res, err := h.syncer.SyncOnce(c.Request.Context())
	if errors.Is(err, ingest.ErrSyncInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("manual sync failed")
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
