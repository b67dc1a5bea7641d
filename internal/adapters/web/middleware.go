package web

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corey/chatmon/internal/logger"
	"github.com/corey/chatmon/internal/metrics"
)

const requestIDKey = "request_id"

// requestID adds a unique request ID to each request.
// If X-Request-ID is present it is reused; otherwise a new UUID is generated.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// observe records request count and latency, and logs the request at debug.
func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		// Route template, not raw path, keeps label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		if m != nil {
			statusStr := strconv.Itoa(status)
			m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, statusStr).Inc()
			m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, statusStr).Observe(elapsed.Seconds())
		}

		logger.Log.Debug("http request",
			logger.WithRequestID(c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			logger.WithDuration(elapsed),
		)
	}
}
