package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/metrics"
)

// RequestLogger records latency metrics and, when logging is on, one access
// log line per request. Bodies are never logged.
func RequestLogger(logger *logrus.Logger, rec metrics.Recorder, logRequests bool) gin.HandlerFunc {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		rec.RecordHTTP(c.Request.Method, route, status, latency)

		if !logRequests || logger == nil {
			return
		}
		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": latency.Milliseconds(),
			"client_ip":  ClientIP(c),
			"request_id": c.GetString("request_id"),
		})
		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
