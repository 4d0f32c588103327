package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hadeslabs/paygate/logger"
)

// RequestLogger logs one structured line per request after it completes.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request", map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}
