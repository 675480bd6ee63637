package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/praxislabs/praxis-backend/internal/logger"
)

// RequestLogger emits one structured line per request after the handler runs.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.With("middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		reqLog.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
