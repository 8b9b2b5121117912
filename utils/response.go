package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	})
}

// JSONRejection sends a structured response for a request the domain refused,
// carrying a stable machine-readable reason code
func JSONRejection(c *gin.Context, status int, reason error, code, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"reason":  code,
		"error":   reason.Error(),
	})
}
