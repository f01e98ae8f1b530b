package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/enquiry-api/pkg/metrics"
)

// MetricsMiddleware counts requests by route template and status
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, path, c.Writer.Status())
	}
}
