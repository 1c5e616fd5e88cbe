package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(NewDomainGroup("pricing", "/pricing").
		POST("/quote", func(c *gin.Context) { c.String(http.StatusOK, "quoted") }))
	r.Setup()

	w := serve(engine, http.MethodPost, "/api/v1/pricing/quote")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "quoted", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodPost, "/pricing/quote").Code)
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.Header("X-Api", "yes")
		c.Next()
	})
	r.Register(NewDomainGroup("catalog", "/catalog").
		GET("/products", func(c *gin.Context) { c.Status(http.StatusOK) }))
	r.Setup()

	assert.Equal(t, "yes", serve(engine, http.MethodGet, "/api/v1/catalog/products").Header().Get("X-Api"))
	assert.Empty(t, serve(engine, http.MethodGet, "/health").Header().Get("X-Api"))
}

func TestDomainGroup_Methods(t *testing.T) {
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }

	engine := gin.New()
	g := NewDomainGroup("configurations", "/configurations").
		GET("/:id", ok).
		POST("", ok).
		PUT("/:id", ok).
		PATCH("/:id", ok).
		DELETE("/:id", ok)
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/configurations/abc"},
		{http.MethodPost, "/api/v1/configurations"},
		{http.MethodPut, "/api/v1/configurations/abc"},
		{http.MethodPatch, "/api/v1/configurations/abc"},
		{http.MethodDelete, "/api/v1/configurations/abc"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.method, w.Body.String())
		})
	}
}

func TestDomainGroup_Subgroups(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("configurator", "/configurator")
	assert.Equal(t, "configurator", g.Name())
	assert.Equal(t, "/configurator", g.Prefix())

	g.Use(func(c *gin.Context) {
		c.Header("X-Group", "configurator")
		c.Next()
	})
	g.Group("sessions", "/sessions").
		POST("", func(c *gin.Context) { c.Status(http.StatusCreated) }).
		GET("/:id/compare", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodPost, "/api/v1/configurator/sessions")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "configurator", w.Header().Get("X-Group"))

	w = serve(engine, http.MethodGet, "/api/v1/configurator/sessions/s-1/compare")
	assert.Equal(t, "s-1", w.Body.String())

	assert.Equal(t, []string{"/configurator/sessions", "/configurator/sessions/:id/compare"}, g.Paths())
}

func TestRouterRoutes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Register(NewDomainGroup("pricing", "/pricing").
		POST("/quote", func(*gin.Context) {}).
		GET("/strategies", func(*gin.Context) {}))
	r.Setup()

	routes := r.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, RouteInfo{Method: http.MethodPost, Path: "/api/v1/pricing/quote"}, routes[0])
	assert.Equal(t, RouteInfo{Method: http.MethodGet, Path: "/api/v1/pricing/strategies"}, routes[1])
	for _, rt := range routes {
		assert.True(t, strings.HasPrefix(rt.Path, r.BasePath()))
	}
}
