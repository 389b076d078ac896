package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tristudio/studio-scheduler-api/internal/service"
)

// Metrics captures per-request timing into the metrics service.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
