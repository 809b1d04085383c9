package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultHistoryWindow = 7 * 24 * time.Hour

// GetOccupancyHistory returns occupancy samples between ?from= and ?to=
// (RFC3339). The window defaults to the last seven days.
func (h *Handler) GetOccupancyHistory(c *gin.Context) {
	to := time.Now().UTC()
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to: expected RFC3339"})
			return
		}
		to = t.UTC()
	}
	from := to.Add(-defaultHistoryWindow)
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from: expected RFC3339"})
			return
		}
		from = t.UTC()
	}
	if from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must not be after to"})
		return
	}

	samples, err := h.store.OccupancyHistory(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}

	type point struct {
		ObservedAt time.Time `json:"observedAt"`
		Revision   int64     `json:"revision"`
		TotalRooms int       `json:"totalRooms"`
		Occupied   int       `json:"occupiedCount"`
		Available  int       `json:"availableCount"`
		Rate       string    `json:"rate"`
	}
	points := make([]point, 0, len(samples))
	for _, s := range samples {
		points = append(points, point{
			ObservedAt: s.ObservedAt.UTC(),
			Revision:   s.Revision,
			TotalRooms: s.TotalRooms,
			Occupied:   s.Occupied,
			Available:  s.Available,
			Rate:       s.Rate.StringFixed(1),
		})
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "samples": points})
}
