package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ConfiguratorMetrics records pricing, persistence and session metrics for
// the configurator.
type ConfiguratorMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	quotesTotal         *Counter
	fallbackTotal       *Counter
	remotePricing       *Histogram
	comparisonRejected  *Counter
	configurationsSaved *Counter
	storageErrors       *Counter
	cartAdds            *Counter

	activeSessions *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// SessionCounter reports the number of live configurator sessions
type SessionCounter interface {
	ActiveSessions() int
}

// ConfiguratorMetricsConfig holds configuration for configurator metrics.
type ConfiguratorMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewConfiguratorMetrics creates a new ConfiguratorMetrics instance.
func NewConfiguratorMetrics(cfg ConfiguratorMetricsConfig) (*ConfiguratorMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &ConfiguratorMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	var err error

	cm.quotesTotal, err = NewCounter(cfg.Meter,
		"shade_price_quotes_total",
		"Total number of price quotes served",
		"{quotes}",
	)
	if err != nil {
		return nil, err
	}

	cm.fallbackTotal, err = NewCounter(cfg.Meter,
		"shade_pricing_fallback_total",
		"Total number of quotes that fell back to the local formula",
		"{quotes}",
	)
	if err != nil {
		return nil, err
	}

	cm.remotePricing, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "shade_remote_pricing_duration_seconds",
		Description: "Remote pricing call latency",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	cm.comparisonRejected, err = NewCounter(cfg.Meter,
		"shade_comparison_limit_rejections_total",
		"Comparison selections rejected because the limit was reached",
		"{selections}",
	)
	if err != nil {
		return nil, err
	}

	cm.configurationsSaved, err = NewCounter(cfg.Meter,
		"shade_configurations_saved_total",
		"Total number of saved configurations",
		"{configurations}",
	)
	if err != nil {
		return nil, err
	}

	cm.storageErrors, err = NewCounter(cfg.Meter,
		"shade_configuration_storage_errors_total",
		"Configuration store failures",
		"{errors}",
	)
	if err != nil {
		return nil, err
	}

	cm.cartAdds, err = NewCounter(cfg.Meter,
		"shade_cart_adds_total",
		"Add-to-cart calls by result",
		"{calls}",
	)
	if err != nil {
		return nil, err
	}

	cm.activeSessions, err = NewGauge(cfg.Meter,
		"shade_configurator_active_sessions",
		"Live configurator sessions",
		"{sessions}",
	)
	if err != nil {
		return nil, err
	}

	return cm, nil
}

// RecordQuote records a served quote by price source
func (cm *ConfiguratorMetrics) RecordQuote(ctx context.Context, productID, source string) {
	cm.quotesTotal.Inc(ctx,
		AttrProductID.String(productID),
		AttrPriceSource.String(source),
	)
}

// RecordFallback records a local-formula fallback and its reason
func (cm *ConfiguratorMetrics) RecordFallback(ctx context.Context, productID, reason string) {
	cm.fallbackTotal.Inc(ctx,
		AttrProductID.String(productID),
		AttrFallbackReason.String(reason),
	)
}

// RecordRemotePricing records the duration of one remote pricing call
func (cm *ConfiguratorMetrics) RecordRemotePricing(ctx context.Context, d time.Duration, ok bool) {
	cm.remotePricing.RecordDuration(ctx, d, attribute.Bool("success", ok))
}

// RecordComparisonRejected records a selection refused by the comparison limit
func (cm *ConfiguratorMetrics) RecordComparisonRejected(ctx context.Context) {
	cm.comparisonRejected.Inc(ctx)
}

// RecordConfigurationSaved records a newly saved configuration
func (cm *ConfiguratorMetrics) RecordConfigurationSaved(ctx context.Context, productID string) {
	cm.configurationsSaved.Inc(ctx, AttrProductID.String(productID))
}

// RecordStorageError records a configuration store failure by operation
func (cm *ConfiguratorMetrics) RecordStorageError(ctx context.Context, operation string) {
	cm.storageErrors.Inc(ctx, AttrStoreOperation.String(operation))
}

// RecordCartAdd records the outcome of an add-to-cart call
func (cm *ConfiguratorMetrics) RecordCartAdd(ctx context.Context, ok bool) {
	result := "success"
	if !ok {
		result = "failed"
	}
	cm.cartAdds.Inc(ctx, AttrResult.String(result))
}

// RecordActiveSessions records the current session count
func (cm *ConfiguratorMetrics) RecordActiveSessions(ctx context.Context, n int) {
	cm.activeSessions.Record(ctx, int64(n))
}

// StartPeriodicCollection samples the session gauge every interval (default 30s).
// It is non-blocking; use Stop to end collection.
func (cm *ConfiguratorMetrics) StartPeriodicCollection(ctx context.Context, sessions SessionCounter, interval time.Duration) {
	cm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 30 * time.Second
		}
		go cm.runPeriodicCollection(ctx, sessions, interval)
	})
}

func (cm *ConfiguratorMetrics) runPeriodicCollection(ctx context.Context, sessions SessionCounter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cm.RecordActiveSessions(ctx, sessions.ActiveSessions())

	for {
		select {
		case <-cm.stopChan:
			cm.logger.Info("Stopping periodic configurator metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			cm.RecordActiveSessions(ctx, sessions.ActiveSessions())
		}
	}
}

// Stop stops the periodic collection.
func (cm *ConfiguratorMetrics) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewConfiguratorMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
