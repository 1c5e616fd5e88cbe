package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appconfigurator "github.com/shadecraft/backend/internal/application/configurator"
	"github.com/shadecraft/backend/internal/domain/configurator"
	domainstrategy "github.com/shadecraft/backend/internal/domain/shared/strategy"
	"github.com/shadecraft/backend/internal/infrastructure/cache"
	"github.com/shadecraft/backend/internal/infrastructure/cart"
	"github.com/shadecraft/backend/internal/infrastructure/catalog"
	"github.com/shadecraft/backend/internal/infrastructure/config"
	"github.com/shadecraft/backend/internal/infrastructure/logger"
	"github.com/shadecraft/backend/internal/infrastructure/persistence"
	"github.com/shadecraft/backend/internal/infrastructure/pricing"
	"github.com/shadecraft/backend/internal/infrastructure/strategy"
	"github.com/shadecraft/backend/internal/infrastructure/telemetry"
	"github.com/shadecraft/backend/internal/interfaces/http/handler"
	"github.com/shadecraft/backend/internal/interfaces/http/middleware"
	"github.com/shadecraft/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting shade configurator",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("store", cfg.Store.Backend),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Telemetry
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	metrics, err := telemetry.NewConfiguratorMetrics(telemetry.ConfiguratorMetricsConfig{
		Meter:  mp.Meter("configurator"),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to initialize configurator metrics", zap.Error(err))
	}

	// Catalog
	def, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		log.Fatal("Failed to load catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}
	productCatalog := catalog.NewMemoryCatalog(def.Products)
	log.Info("Catalog loaded", zap.Int("products", productCatalog.Len()))

	// Database, only when saved configurations live there
	var db *persistence.Database
	if cfg.Store.Backend == config.StoreBackendDatabase {
		db, err = persistence.NewDatabase(&cfg.Database,
			persistence.WithLogger(log, cfg.Log.Level, cfg.Telemetry.DBSlowQueryThresh),
			persistence.WithTracing(telemetry.GormTracingConfig{
				Enabled:         cfg.Telemetry.DBTraceEnabled,
				IncludeSQLVars:  cfg.Telemetry.DBLogFullSQL,
				SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			}),
		)
		if err != nil && !cfg.Store.MemoryFallback {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err != nil {
			log.Warn("Database unavailable", zap.Error(err))
			db = nil
		} else {
			log.Info("Database connected successfully", zap.String("driver", db.Driver))
		}
	}

	// Stores
	factoryOpts := []cache.StoreFactoryOption{cache.WithLogger(log)}
	if db != nil {
		factoryOpts = append(factoryOpts, cache.WithDatabase(db.DB))
	}
	stores := cache.NewStoreFactory(cfg, factoryOpts...)
	store, err := stores.ConfigurationStore(ctx)
	if err != nil {
		log.Fatal("Failed to open configuration store", zap.Error(err))
	}
	repo := persistence.NewKeyedConfigurationRepository(store, cfg.Store.Key, log)

	// Pricing
	var localOpts []domainstrategy.LocalPricingOption
	if len(def.Surcharges) > 0 {
		localOpts = append(localOpts, domainstrategy.WithSurcharges(def.Surcharges))
	}
	local := domainstrategy.NewLocalPricingStrategy(localOpts...)

	var remote domainstrategy.PricingStrategy
	if cfg.Pricing.RemoteURL != "" {
		client, err := pricing.NewRemotePricingClient(cfg.Pricing.RemoteURL, cfg.Pricing.Timeout,
			pricing.WithLogger(log),
			pricing.WithMetrics(metrics),
		)
		if err != nil {
			log.Fatal("Invalid remote pricing configuration", zap.Error(err))
		}
		remote = client
	}
	registry, err := strategy.NewPricingRegistry(local, remote, cfg.Pricing.Strategy, strategy.WithRegistryLogger(log))
	if err != nil {
		log.Fatal("Invalid pricing strategy", zap.Error(err))
	}
	log.Info("Pricing ready",
		zap.String("strategy", registry.Default()),
		zap.Bool("remote", remote != nil),
	)

	// Cart
	var cartClient configurator.Cart
	if cfg.Cart.BaseURL != "" {
		client, err := cart.NewHTTPCartClient(cfg.Cart.BaseURL, cfg.Cart.Timeout)
		if err != nil {
			log.Fatal("Invalid cart configuration", zap.Error(err))
		}
		cartClient = client
	}

	// Application services
	pricingService := appconfigurator.NewPricingServiceWithStrategy(productCatalog, registry.DefaultStrategy(), local, log)
	pricingService.SetMetrics(metrics)
	configService := appconfigurator.NewConfigurationService(repo, productCatalog, pricingService, log)
	configService.SetMetrics(metrics)
	comparisonService := appconfigurator.NewComparisonService(repo, pricingService, log)
	sessionService := appconfigurator.NewSessionService(
		productCatalog,
		pricingService,
		configService,
		comparisonService,
		cartClient,
		appconfigurator.SessionConfig{TTL: cfg.Session.IdleTTL, CartTimeout: cfg.Cart.Timeout},
		log,
	)
	sessionService.SetMetrics(metrics)
	sessionService.SetIdempotencyStore(stores.IdempotencyStore(ctx), cfg.Cart.IdempotencyTTL)
	sessionService.StartJanitor(ctx, cfg.Session.SweepInterval)
	metrics.StartPeriodicCollection(ctx, sessionService, cfg.Telemetry.MetricsInterval)

	// Handlers
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version)
	systemHandler.AddCheck("configuration_store", storeCheck(store, cfg.Store.Key))
	if db != nil {
		systemHandler.AddCheck("database", func(context.Context) error { return db.Ping() })
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validation", zap.Error(err))
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:         log,
		HTTP:           cfg.HTTP,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tp.IsEnabled(),
		Meter:          mp,
	})
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterRoutes(r, router.Handlers{
		Catalog:        handler.NewCatalogHandler(productCatalog),
		Pricing:        handler.NewPricingHandler(pricingService, registry),
		Sessions:       handler.NewSessionHandler(sessionService),
		Configurations: handler.NewConfigurationHandler(configService),
		System:         systemHandler,
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.Int("routes", len(r.Routes())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// stop janitor and metric collection, then let pending cart calls finish
	stop()
	metrics.Stop()
	sessionService.Wait()

	if err := stores.Close(); err != nil {
		log.Error("Error closing stores", zap.Error(err))
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tp.Shutdown,
		"meter":  mp.Shutdown,
		"logger": lp.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Error("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// storeCheck reports the configuration store ready when its key can be read.
// An absent key is fine: nothing has been saved yet.
func storeCheck(store configurator.ConfigurationStore, key string) handler.HealthCheck {
	return func(ctx context.Context) error {
		_, err := store.Get(ctx, key)
		if err != nil && !errors.Is(err, configurator.ErrStoreKeyNotFound) {
			return err
		}
		return nil
	}
}
