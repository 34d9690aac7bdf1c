package api

import (
	"net/http"

	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PersonaHandler handles the creator persona endpoints
type PersonaHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPersonaHandler creates a new PersonaHandler
func NewPersonaHandler(services *service.Services, log zerolog.Logger) *PersonaHandler {
	return &PersonaHandler{
		services: services,
		log:      log.With().Str("handler", "persona").Logger(),
	}
}

// GetPersona handles GET /v1/persona
func (h *PersonaHandler) GetPersona(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Settings.GetPersona())
}

// UpdatePersona handles PUT /v1/persona
func (h *PersonaHandler) UpdatePersona(c *gin.Context) {
	var persona models.Persona
	if err := c.ShouldBindJSON(&persona); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.services.Settings.UpdatePersona(c.Request.Context(), persona)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
