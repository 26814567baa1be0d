package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itrun-git/itrun-back/internal/metrics"
)

// Metrics returns a middleware that records HTTP metrics
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics.ShouldSkipEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RecordHTTPRequest(
			c.Request.Method,
			endpoint, // route pattern keeps label cardinality bounded
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
