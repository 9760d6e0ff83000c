package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SettingsHandler serves the read-only settings panel.
type SettingsHandler struct {
	facade StampCardFacade
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(facade StampCardFacade) *SettingsHandler {
	return &SettingsHandler{facade: facade}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.facade.Settings())
}
