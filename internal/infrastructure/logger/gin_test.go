package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newLoggedRouter(l *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	router.Use(GinMiddleware(l))
	return router
}

func TestGinMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		level  zapcore.Level
	}{
		{"success", "/api/v1/configurations", http.StatusOK, zapcore.InfoLevel},
		{"client error", "/api/v1/configurations", http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{"server error", "/api/v1/configurations", http.StatusServiceUnavailable, zapcore.ErrorLevel},
		{"health is debug", "/health", http.StatusOK, zapcore.DebugLevel},
		{"ready is debug", "/ready", http.StatusOK, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			router := newLoggedRouter(zap.New(core))
			router.GET(tt.path, func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path+"?product_id=x", nil))

			entries := recorded.FilterMessage("HTTP Request").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
			fields := entries[0].ContextMap()
			assert.Equal(t, "req-123", fields["request_id"])
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, tt.path, fields["route"])
			assert.Equal(t, "product_id=x", fields["query"])
		})
	}
}

func TestGinMiddleware_RequestContextLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := newLoggedRouter(zap.New(core))
	router.GET("/ctx", func(c *gin.Context) {
		assert.Equal(t, "req-123", GetRequestID(c.Request.Context()))
		FromContext(c.Request.Context()).Info("from handler")
		GetGinLogger(c).Info("from gin")
		c.Status(http.StatusNoContent)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ctx", nil))

	assert.Equal(t, "req-123", recorded.FilterMessage("from handler").All()[0].ContextMap()["request_id"])
	assert.Equal(t, "GET", recorded.FilterMessage("from gin").All()[0].ContextMap()["method"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"ERR_INTERNAL"`)
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGinMiddleware_ResourceFields(t *testing.T) {
	tests := []struct {
		name  string
		route string
		path  string
		want  map[string]string
	}{
		{
			name:  "session",
			route: "/api/v1/configurator/sessions/:id/width",
			path:  "/api/v1/configurator/sessions/s-1/width",
			want:  map[string]string{"session_id": "s-1"},
		},
		{
			name:  "session compare",
			route: "/api/v1/configurator/sessions/:id/compare/:config_id",
			path:  "/api/v1/configurator/sessions/s-1/compare/c-9",
			want:  map[string]string{"session_id": "s-1", "configuration_id": "c-9"},
		},
		{
			name:  "configuration",
			route: "/api/v1/configurations/:id",
			path:  "/api/v1/configurations/c-2",
			want:  map[string]string{"configuration_id": "c-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			router := newLoggedRouter(zap.New(core))
			router.PUT(tt.route, func(c *gin.Context) { c.Status(http.StatusOK) })

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, tt.path, nil))

			entries := recorded.FilterMessage("HTTP Request").All()
			require.Len(t, entries, 1)
			fields := entries[0].ContextMap()
			for k, v := range tt.want {
				assert.Equal(t, v, fields[k], k)
			}
			if _, ok := tt.want["session_id"]; !ok {
				assert.NotContains(t, fields, "session_id")
			}
		})
	}
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
