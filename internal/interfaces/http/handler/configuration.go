package handler

import (
	"github.com/gin-gonic/gin"
	appconfigurator "github.com/shadecraft/backend/internal/application/configurator"
)

// ConfigurationHandler manages saved configurations
type ConfigurationHandler struct {
	BaseHandler
	configs *appconfigurator.ConfigurationService
}

// NewConfigurationHandler creates a new ConfigurationHandler
func NewConfigurationHandler(configs *appconfigurator.ConfigurationService) *ConfigurationHandler {
	return &ConfigurationHandler{configs: configs}
}

// List handles GET /configurations with an optional product_id filter.
// An unreadable store lists as empty.
func (h *ConfigurationHandler) List(c *gin.Context) {
	list := h.configs.List(c.Request.Context(), c.Query("product_id"))
	h.SuccessList(c, list, len(list))
}

// Create handles POST /configurations
func (h *ConfigurationHandler) Create(c *gin.Context) {
	var req appconfigurator.SaveConfigurationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	saved, err := h.configs.Save(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, saved)
}

// Get handles GET /configurations/:id
func (h *ConfigurationHandler) Get(c *gin.Context) {
	saved, err := h.configs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, saved)
}

// Update handles PATCH /configurations/:id
func (h *ConfigurationHandler) Update(c *gin.Context) {
	var req appconfigurator.UpdateConfigurationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	saved, err := h.configs.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, saved)
}

// Delete handles DELETE /configurations/:id
func (h *ConfigurationHandler) Delete(c *gin.Context) {
	if err := h.configs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
