package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the envelope every endpoint answers with.
type Body struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Body{Success: true, Message: message})
}

// SuccessWith adds one extra top level field next to success.
func SuccessWith(c *gin.Context, key string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, key: data})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Body{Success: false, Message: message})
}
