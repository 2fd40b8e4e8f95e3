package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"hotelbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// AccessLog writes one line per request. 5xx responses and requests that carry
// gin errors are logged at error level.
func AccessLog(logger zerolog.Logger) gin.HandlerFunc {
	logger = logger.With().Str("component", "http").Logger()

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError || len(c.Errors) > 0 {
			event = logger.Error()
		}

		event = event.
			Str("type", "access").
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("route", routeOf(c)).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP())

		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			event = event.Str("trace_id", sc.TraceID().String())
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("request")
	}
}

// Recovery turns a panic into a 500 envelope and logs the stack.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	logger = logger.With().Str("component", "http").Logger()

	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error().
					Str("type", "panic").
					Str("request_id", RequestIDFrom(c)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("error", fmt.Sprintf("%v", recovered)).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				response.Error(c, http.StatusInternalServerError, response.CodeInternal, "internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
