package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const healthMessage = "Tredia Investing backend is running."

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": healthMessage})
}
