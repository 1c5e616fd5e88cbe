// Package middleware provides HTTP middleware for the configurator API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shadecraft/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns the otelgin middleware. Health checks are not traced.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	)
}

// TraceIDHeader echoes the trace of a sampled request
const TraceIDHeader = "X-Trace-ID"

// SpanEnricher tags the active span with the request ID and, on configurator
// routes, the session and configuration IDs, and echoes the trace ID.
// Responses of 400 and above mark the span as failed. It must run after
// TracingWithConfig.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if requestID := GetRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if strings.Contains(c.FullPath(), "/sessions/:id") {
			span.SetAttributes(telemetry.SessionID(c.Param("id")))
		}
		if configID := c.Param("config_id"); configID != "" {
			span.SetAttributes(telemetry.ConfigurationID(configID))
		} else if strings.HasPrefix(c.FullPath(), "/api/v1/configurations/:id") {
			span.SetAttributes(telemetry.ConfigurationID(c.Param("id")))
		}
		if traceID := telemetry.GetTraceID(c.Request.Context()); traceID != "" {
			c.Header(TraceIDHeader, traceID)
		}

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}
