package handlers

import "github.com/gin-gonic/gin"

// Every response uses the same envelope: a success flag, a human-readable
// message, and the payload under data.

func respondOK(c *gin.Context, status int, message string, data gin.H) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func respondValidationError(c *gin.Context, status int, message string, fieldErrors gin.H) {
	c.JSON(status, gin.H{"success": false, "message": message, "errors": fieldErrors})
}
