package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/veridoc"
	"github.com/soundprediction/veridoc/pkg/server/dto"
)

// AdminHandler handles operational endpoints
type AdminHandler struct {
	veridoc veridoc.Reloader
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(v veridoc.Reloader) *AdminHandler {
	return &AdminHandler{
		veridoc: v,
	}
}

// Reload handles POST /api/v1/reload. The swap is atomic: requests in flight
// keep the snapshot they started with, and a failed reload leaves the old
// state serving.
func (h *AdminHandler) Reload(c *gin.Context) {
	if err := h.veridoc.Reload(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "reload_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}
