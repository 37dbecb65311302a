package utils

import "github.com/gin-gonic/gin"

// ErrorResponse writes the error envelope used across the API. Every error
// path answers with a "detail" key.
func ErrorResponse(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

// SuccessResponse writes a "message" plus any extra payload fields.
func SuccessResponse(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}
