package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharinglove/sharinglove-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route. The path label is the
// matched route template from FullPath, so /posts/:id stays one series
// whatever id is requested; requests that match no route share one label.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	if metrics == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTPRequest(c.Request.Method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
