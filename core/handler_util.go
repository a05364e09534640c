package core

import "github.com/gin-gonic/gin"

// respondError sends the unified error payload {"error", "message"}.
func respondError(c *gin.Context, status int, errText, message string) {
	c.JSON(status, gin.H{"error": errText, "message": message})
}

// respondMessage sends a single-field {"message"} payload.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}
