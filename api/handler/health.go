package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sitebrief/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Root returns a handler for GET /.
func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Health returns a handler for GET /api/v1/health.
//
// Status degrades when every browser session slot is busy.
func Health(stats StatsSource, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := stats.Stats()

		status := "healthy"
		if s.MaxSessions > 0 && s.ActiveSessions >= s.MaxSessions {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         status,
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			ActiveSessions: s.ActiveSessions,
			MaxSessions:    s.MaxSessions,
			Version:        Version,
		})
	}
}
