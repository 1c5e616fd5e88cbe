package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shadecraft/backend/internal/infrastructure/config"
	"github.com/shadecraft/backend/internal/infrastructure/logger"
	"github.com/shadecraft/backend/internal/infrastructure/telemetry"
	"github.com/shadecraft/backend/internal/interfaces/http/handler"
	"github.com/shadecraft/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Catalog        *handler.CatalogHandler
	Pricing        *handler.PricingHandler
	Sessions       *handler.SessionHandler
	Configurations *handler.ConfigurationHandler
	System         *handler.SystemHandler
}

// EngineConfig configures the middleware stack built by NewEngine
type EngineConfig struct {
	Logger         *zap.Logger
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	// Meter records HTTP metrics; nil disables them
	Meter *telemetry.MeterProvider
}

// NewEngine builds a gin engine with the standard middleware stack:
// request id, access log, panic recovery, security headers, CORS, body limit,
// tracing, span enrichment and HTTP metrics.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(cfg.Meter))
	return engine
}

// RegisterRoutes mounts the health endpoints at the root and the configurator API
// under the router's versioned prefix, then calls Setup.
func RegisterRoutes(r *Router, h Handlers) {
	if h.System != nil {
		r.engine.GET("/health", h.System.Health)
		r.engine.GET("/ready", h.System.Ready)
		r.Register(NewDomainGroup("system", "/system").
			GET("/info", h.System.GetSystemInfo))
	}

	if h.Catalog != nil {
		r.Register(NewDomainGroup("catalog", "/catalog").
			GET("/products", h.Catalog.ListProducts).
			GET("/products/:id", h.Catalog.GetProduct))
	}

	if h.Pricing != nil {
		r.Register(NewDomainGroup("pricing", "/pricing").
			POST("/quote", h.Pricing.Quote).
			GET("/strategies", h.Pricing.ListStrategies))
	}

	if h.Configurations != nil {
		r.Register(NewDomainGroup("configurations", "/configurations").
			GET("", h.Configurations.List).
			POST("", h.Configurations.Create).
			GET("/:id", h.Configurations.Get).
			PATCH("/:id", h.Configurations.Update).
			DELETE("/:id", h.Configurations.Delete))
	}

	if h.Sessions != nil {
		configurator := NewDomainGroup("configurator", "/configurator")
		configurator.Group("sessions", "/sessions").
			POST("", h.Sessions.Start).
			GET("/:id", h.Sessions.Get).
			DELETE("/:id", h.Sessions.End).
			PUT("/:id/width", h.Sessions.SetWidth).
			PUT("/:id/height", h.Sessions.SetHeight).
			PUT("/:id/options", h.Sessions.SetOption).
			PUT("/:id/quantity", h.Sessions.SetQuantity).
			POST("/:id/save", h.Sessions.Save).
			POST("/:id/load/:config_id", h.Sessions.Load).
			GET("/:id/compare", h.Sessions.Comparison).
			POST("/:id/compare/:config_id", h.Sessions.Select).
			DELETE("/:id/compare/:config_id", h.Sessions.Deselect).
			POST("/:id/cart", h.Sessions.AddToCart)
		r.Register(configurator)
	}

	r.Setup()
}
