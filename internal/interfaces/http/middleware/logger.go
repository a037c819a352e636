package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"inkpost.backend/pkg/logger"
)

// LoggerMiddleware logs HTTP requests using the structured logger
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// route template, so uidb64/token never reach the logs
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}
