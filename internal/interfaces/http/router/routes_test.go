package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	appconfigurator "github.com/shadecraft/backend/internal/application/configurator"
	"github.com/shadecraft/backend/internal/infrastructure/catalog"
	"github.com/shadecraft/backend/internal/infrastructure/config"
	"github.com/shadecraft/backend/internal/infrastructure/persistence"
	"github.com/shadecraft/backend/internal/infrastructure/strategy"
	"github.com/shadecraft/backend/internal/interfaces/http/handler"
	"github.com/shadecraft/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const routesCatalog = `
product "roller-shade" {
  title      = "Roller Shade"
  base_price = "89.50"

  option "Control Type" {
    values  = ["Corded", "Motorized"]
    default = "Corded"
  }
}
`

func newTestServer(t *testing.T, httpCfg config.HTTPConfig, ready handler.HealthCheck) (*gin.Engine, *Router) {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	def, err := catalog.Parse([]byte(routesCatalog), "catalog.hcl")
	require.NoError(t, err)
	cat := catalog.NewMemoryCatalog(def.Products)

	registry, err := strategy.NewPricingRegistry(nil, nil, "")
	require.NoError(t, err)

	repo := persistence.NewKeyedConfigurationRepository(persistence.NewInMemoryConfigurationStore(), "", nil)
	pricing := appconfigurator.NewPricingService(cat, nil, nil, nil)
	configs := appconfigurator.NewConfigurationService(repo, cat, pricing, nil)
	comparisons := appconfigurator.NewComparisonService(repo, pricing, nil)
	sessions := appconfigurator.NewSessionService(cat, pricing, configs, comparisons, nil, appconfigurator.SessionConfig{}, nil)

	system := handler.NewSystemHandler("shade-configurator", "test")
	if ready != nil {
		system.AddCheck("store", ready)
	}

	engine := NewEngine(EngineConfig{
		Logger:      zaptest.NewLogger(t),
		HTTP:        httpCfg,
		ServiceName: "shade-configurator",
	})
	r := NewRouter(engine)
	RegisterRoutes(r, Handlers{
		Catalog:        handler.NewCatalogHandler(cat),
		Pricing:        handler.NewPricingHandler(pricing, registry),
		Sessions:       handler.NewSessionHandler(sessions),
		Configurations: handler.NewConfigurationHandler(configs),
		System:         system,
	})
	return engine, r
}

func TestRegisterRoutes_Table(t *testing.T) {
	_, r := newTestServer(t, config.HTTPConfig{}, nil)

	got := map[string]bool{}
	for _, rt := range r.Routes() {
		got[rt.Method+" "+rt.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /ready",
		"GET /api/v1/system/info",
		"GET /api/v1/catalog/products",
		"GET /api/v1/catalog/products/:id",
		"POST /api/v1/pricing/quote",
		"GET /api/v1/pricing/strategies",
		"GET /api/v1/configurations",
		"POST /api/v1/configurations",
		"PATCH /api/v1/configurations/:id",
		"DELETE /api/v1/configurations/:id",
		"POST /api/v1/configurator/sessions",
		"PUT /api/v1/configurator/sessions/:id/width",
		"PUT /api/v1/configurator/sessions/:id/options",
		"POST /api/v1/configurator/sessions/:id/save",
		"POST /api/v1/configurator/sessions/:id/load/:config_id",
		"POST /api/v1/configurator/sessions/:id/compare/:config_id",
		"DELETE /api/v1/configurator/sessions/:id/compare/:config_id",
		"GET /api/v1/configurator/sessions/:id/compare",
		"POST /api/v1/configurator/sessions/:id/cart",
	} {
		assert.True(t, got[want], "missing route %s", want)
	}
}

func TestEngine_HealthEndpoints(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		engine, _ := newTestServer(t, config.HTTPConfig{}, func(context.Context) error { return nil })

		w := serve(engine, http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/ready").Code)
	})

	t.Run("store down fails readiness only", func(t *testing.T) {
		engine, _ := newTestServer(t, config.HTTPConfig{}, func(context.Context) error { return errors.New("redis: connection refused") })

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
		assert.Equal(t, http.StatusServiceUnavailable, serve(engine, http.MethodGet, "/ready").Code)
	})
}

func TestEngine_SessionFlow(t *testing.T) {
	engine, _ := newTestServer(t, config.HTTPConfig{}, nil)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.RequestIDHeader, "flow-1")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/v1/configurator/sessions", `{"product_id":"roller-shade"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "flow-1", w.Header().Get(middleware.RequestIDHeader))

	var created struct {
		Data appconfigurator.SessionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID

	w = do(http.MethodPut, "/api/v1/configurator/sessions/"+id+"/options", `{"name":"Control Type","value":"Motorized"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodPut, "/api/v1/configurator/sessions/"+id+"/width", `{"whole":40,"fraction":"5/9"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"request_id":"flow-1"`)

	w = do(http.MethodPost, "/api/v1/configurator/sessions/"+id+"/cart", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestEngine_BodyLimit(t *testing.T) {
	engine, _ := newTestServer(t, config.HTTPConfig{MaxBodySize: 64}, nil)

	body := `{"product_id":"roller-shade","padding":"` + strings.Repeat("x", 128) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/configurator/sessions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestEngine_CORSPreflight(t *testing.T) {
	engine, _ := newTestServer(t, config.HTTPConfig{
		CORSAllowOrigins: []string{"https://shop.example.com"},
		CORSAllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		CORSAllowHeaders: []string{"Content-Type", "Idempotency-Key"},
	}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/configurator/sessions", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
