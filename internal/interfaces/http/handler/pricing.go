package handler

import (
	"github.com/gin-gonic/gin"
	appconfigurator "github.com/shadecraft/backend/internal/application/configurator"
	"github.com/shadecraft/backend/internal/infrastructure/strategy"
)

// PricingHandler answers one-shot price quotes
type PricingHandler struct {
	BaseHandler
	pricing  *appconfigurator.PricingService
	registry *strategy.PricingRegistry
}

// NewPricingHandler creates a new PricingHandler. registry may be nil.
func NewPricingHandler(pricing *appconfigurator.PricingService, registry *strategy.PricingRegistry) *PricingHandler {
	return &PricingHandler{pricing: pricing, registry: registry}
}

// Quote handles POST /pricing/quote
func (h *PricingHandler) Quote(c *gin.Context) {
	var req appconfigurator.QuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.pricing.QuoteProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListStrategies handles GET /pricing/strategies
func (h *PricingHandler) ListStrategies(c *gin.Context) {
	if h.registry == nil {
		h.SuccessList(c, []strategy.StrategyInfo{}, 0)
		return
	}
	infos := h.registry.Describe()
	h.SuccessList(c, infos, len(infos))
}
