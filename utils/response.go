package utils

import (
	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	body := gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	}
	if id := c.GetString(RequestIDKey); id != "" {
		body["request_id"] = id
	}
	c.JSON(status, body)
}

// JSONError sends a structured error response. The raw error text is returned to the client.
func JSONError(c *gin.Context, status int, err error, message string) {
	body := gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	}
	if id := c.GetString(RequestIDKey); id != "" {
		body["request_id"] = id
	}
	c.AbortWithStatusJSON(status, body)
}
