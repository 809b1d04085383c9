package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-analytics-backend/internal/model"
)

// GetVAPIDPublicKey returns the key browsers need to subscribe to occupancy
// alerts, along with the topics they may pick. It answers 503 while push
// alerts are disabled.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		h.log.Debug("vapid public key requested but push alerts are disabled")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push alerts are disabled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"publicKey": h.webpush.VAPIDPublicKey, "topics": model.KnownTopics})
}
