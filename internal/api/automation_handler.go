package api

import (
	"net/http"

	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AutomationHandler handles rule and asset endpoints
type AutomationHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAutomationHandler creates a new AutomationHandler
func NewAutomationHandler(services *service.Services, log zerolog.Logger) *AutomationHandler {
	return &AutomationHandler{
		services: services,
		log:      log.With().Str("handler", "automation").Logger(),
	}
}

// ListRules handles GET /v1/rules
func (h *AutomationHandler) ListRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": h.services.Settings.ListRules()})
}

// CreateRule handles POST /v1/rules
func (h *AutomationHandler) CreateRule(c *gin.Context) {
	var rule models.AutomationRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.services.Settings.CreateRule(c.Request.Context(), rule)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateRule handles PUT /v1/rules/:rule_id
func (h *AutomationHandler) UpdateRule(c *gin.Context) {
	var rule models.AutomationRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.services.Settings.UpdateRule(c.Request.Context(), c.Param("rule_id"), rule)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ToggleRule handles POST /v1/rules/:rule_id/toggle
func (h *AutomationHandler) ToggleRule(c *gin.Context) {
	rule, err := h.services.Settings.ToggleRule(c.Request.Context(), c.Param("rule_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRule handles DELETE /v1/rules/:rule_id
func (h *AutomationHandler) DeleteRule(c *gin.Context) {
	if err := h.services.Settings.DeleteRule(c.Request.Context(), c.Param("rule_id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAssets handles GET /v1/assets
func (h *AutomationHandler) ListAssets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"assets": h.services.Settings.ListAssets()})
}

// CreateAsset handles POST /v1/assets
func (h *AutomationHandler) CreateAsset(c *gin.Context) {
	var asset models.Asset
	if err := c.ShouldBindJSON(&asset); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.services.Settings.CreateAsset(c.Request.Context(), asset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateAsset handles PUT /v1/assets/:asset_id
func (h *AutomationHandler) UpdateAsset(c *gin.Context) {
	var asset models.Asset
	if err := c.ShouldBindJSON(&asset); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.services.Settings.UpdateAsset(c.Request.Context(), c.Param("asset_id"), asset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteAsset handles DELETE /v1/assets/:asset_id
// Rules that still point at the asset are kept; they simply stop sending DMs.
func (h *AutomationHandler) DeleteAsset(c *gin.Context) {
	if err := h.services.Settings.DeleteAsset(c.Request.Context(), c.Param("asset_id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
