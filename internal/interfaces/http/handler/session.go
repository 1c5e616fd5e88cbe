package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appconfigurator "github.com/shadecraft/backend/internal/application/configurator"
	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/interfaces/http/dto"
	"github.com/shadecraft/backend/internal/interfaces/http/middleware"
)

// SessionHandler drives live configurator sessions
type SessionHandler struct {
	BaseHandler
	sessions *appconfigurator.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions *appconfigurator.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Start handles POST /configurator/sessions
func (h *SessionHandler) Start(c *gin.Context) {
	var req appconfigurator.StartSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.sessions.Start(c.Request.Context(), req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Get handles GET /configurator/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

// End handles DELETE /configurator/sessions/:id
func (h *SessionHandler) End(c *gin.Context) {
	if err := h.sessions.End(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetWidth handles PUT /configurator/sessions/:id/width
func (h *SessionHandler) SetWidth(c *gin.Context) {
	var req appconfigurator.DimensionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.sessions.SetWidth(c.Request.Context(), c.Param("id"), req)
	h.respond(c, view, err)
}

// SetHeight handles PUT /configurator/sessions/:id/height
func (h *SessionHandler) SetHeight(c *gin.Context) {
	var req appconfigurator.DimensionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.sessions.SetHeight(c.Request.Context(), c.Param("id"), req)
	h.respond(c, view, err)
}

// SetOption handles PUT /configurator/sessions/:id/options
func (h *SessionHandler) SetOption(c *gin.Context) {
	var req appconfigurator.OptionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.sessions.SetOption(c.Request.Context(), c.Param("id"), req)
	h.respond(c, view, err)
}

// SetQuantity handles PUT /configurator/sessions/:id/quantity
func (h *SessionHandler) SetQuantity(c *gin.Context) {
	var req appconfigurator.QuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.sessions.SetQuantity(c.Request.Context(), c.Param("id"), req)
	h.respond(c, view, err)
}

// Save handles POST /configurator/sessions/:id/save
func (h *SessionHandler) Save(c *gin.Context) {
	var req appconfigurator.SaveSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	saved, err := h.sessions.SaveCurrent(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, saved)
}

// Load handles POST /configurator/sessions/:id/load/:config_id
func (h *SessionHandler) Load(c *gin.Context) {
	view, err := h.sessions.LoadSaved(c.Request.Context(), c.Param("id"), c.Param("config_id"))
	h.respond(c, view, err)
}

// Select handles POST /configurator/sessions/:id/compare/:config_id.
// A fourth selection answers 422 with the limit notice; the selection is unchanged.
func (h *SessionHandler) Select(c *gin.Context) {
	view, err := h.sessions.SelectForComparison(c.Request.Context(), c.Param("id"), c.Param("config_id"))
	if errors.Is(err, shared.ErrComparisonLimit) {
		current, getErr := h.sessions.Get(c.Request.Context(), c.Param("id"))
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeComparisonLimit, shared.ErrComparisonLimit.Message, getRequestID(c))
		if getErr == nil {
			resp.Data = current
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	h.respond(c, view, err)
}

// Deselect handles DELETE /configurator/sessions/:id/compare/:config_id
func (h *SessionHandler) Deselect(c *gin.Context) {
	view, err := h.sessions.DeselectForComparison(c.Request.Context(), c.Param("id"), c.Param("config_id"))
	h.respond(c, view, err)
}

// Comparison handles GET /configurator/sessions/:id/compare
func (h *SessionHandler) Comparison(c *gin.Context) {
	table, err := h.sessions.Comparison(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := dto.NewListResponse(table, len(table.Rows))
	if len(table.Missing) > 0 {
		resp.Meta.Notice = "Some saved configurations are no longer available"
	}
	c.JSON(http.StatusOK, resp)
}

// AddToCart handles POST /configurator/sessions/:id/cart. The cart call runs in
// the background, so success is 202. A repeated Idempotency-Key answers 409.
func (h *SessionHandler) AddToCart(c *gin.Context) {
	item, err := h.sessions.AddToCart(c.Request.Context(), c.Param("id"), c.GetHeader(middleware.IdempotencyKeyHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, item)
}

func (h *SessionHandler) respond(c *gin.Context, view *appconfigurator.SessionView, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
