package middleware

import (
	"time"

	"hotelbooking/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency labelled by route template, not raw path.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTP(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
	}
}
