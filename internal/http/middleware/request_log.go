package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fitpilot/fitpilot-backend/internal/platform/ctxutil"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

// Plan generation waits on the model; anything slower than this is worth a warning.
const slowRequest = 20 * time.Second

// RequestLogger writes one line per request after the handler chain finishes,
// so the user id set by RequireAuth is visible. Health probes log at debug.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			fields = append(fields, "user_id", rd.UserID.String())
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}

		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		case elapsed > slowRequest:
			log.Warn("slow request", fields...)
		case route == "/healthcheck":
			log.Debug("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
