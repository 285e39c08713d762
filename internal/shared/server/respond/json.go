package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes payload with 200.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Accepted writes payload with 202 and points Location at where the result
// will appear.
func Accepted(c *gin.Context, location string, payload any) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusAccepted, payload)
}
