package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

const RequestIDHeader = "X-Request-Id"

// RequestLogger tags every request with an id and logs method, path, status
// and latency on completion.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	log = log.With("Middleware", "RequestLogger")
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		log.Info("Request handled",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
