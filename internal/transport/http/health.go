package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports process liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
