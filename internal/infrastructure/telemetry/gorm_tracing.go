package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormTracingConfig controls tracing of configuration store queries.
type GormTracingConfig struct {
	Enabled         bool
	DBSystem        string        // "postgresql" or "sqlite"
	IncludeSQLVars  bool          // include bound values in statements
	SlowQueryThresh time.Duration // default 200ms
}

type queryStartKey struct{}

// callbackRegistrar is the subset of gorm's callback builder used here
type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// RegisterGormTracing installs the otelgorm plugin plus a callback that marks
// slow queries and query errors on the current span.
func RegisterGormTracing(db *gorm.DB, cfg GormTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.IncludeSQLVars {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateQuerySpan(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	hooks := []struct {
		name string
		hook callbackRegistrar
		fn   func(*gorm.DB)
	}{
		{"before_create", cb.Create().Before("gorm:create"), before},
		{"after_create", cb.Create().After("gorm:create"), after},
		{"before_query", cb.Query().Before("gorm:query"), before},
		{"after_query", cb.Query().After("gorm:query"), after},
		{"before_update", cb.Update().Before("gorm:update"), before},
		{"after_update", cb.Update().After("gorm:update"), after},
		{"before_row", cb.Row().Before("gorm:row"), before},
		{"after_row", cb.Row().After("gorm:row"), after},
		{"before_raw", cb.Raw().Before("gorm:raw"), before},
		{"after_raw", cb.Raw().After("gorm:raw"), after},
	}
	for _, h := range hooks {
		if err := h.hook.Register("shade_timing:"+h.name, h.fn); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateQuerySpan(tx *gorm.DB, slow time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))

	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > slow {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
