package server

import (
	"auction-house/services/bidding/helpers"
	"auction-house/utils"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
		"user_id": helpers.ViewerID(c),
	})
}

// UserIdentityMiddleware copies the identity asserted by the auth layer into
// the request context. Requests without it are anonymous.
func UserIdentityMiddleware(c *gin.Context) {
	if userID := strings.TrimSpace(c.GetHeader(helpers.UserIDHeader)); userID != "" {
		c.Set(helpers.UserIDKey, userID)
	}
	c.Next()
}
