package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name for configurator spans
const TracerName = "github.com/shadecraft/backend"

// Span attribute keys
const (
	SpanAttrSessionID       = "configurator.session_id"
	SpanAttrConfigurationID = "configurator.configuration_id"
	SpanAttrProductID       = "product.id"
	SpanAttrPriceSource     = "pricing.source"
	SpanAttrSequence        = "pricing.sequence"
)

// SessionID tags a span with the configurator session
func SessionID(id string) attribute.KeyValue { return attribute.String(SpanAttrSessionID, id) }

// ConfigurationID tags a span with a saved configuration
func ConfigurationID(id string) attribute.KeyValue {
	return attribute.String(SpanAttrConfigurationID, id)
}

// ProductID tags a span with a catalog product
func ProductID(id string) attribute.KeyValue { return attribute.String(SpanAttrProductID, id) }

// PriceSource tags a span with where its price came from
func PriceSource(source string) attribute.KeyValue {
	return attribute.String(SpanAttrPriceSource, source)
}

// PricingSequence tags a span with the session's pricing request number
func PricingSequence(seq uint64) attribute.KeyValue {
	return attribute.Int64(SpanAttrSequence, int64(seq))
}

// StartSpan starts a {component}.{operation} span from the global tracer
// provider. Outbound calls pass trace.SpanKindClient. The caller ends it,
// usually through EndSpan.
func StartSpan(ctx context.Context, component, operation string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if kind == trace.SpanKindUnspecified {
		kind = trace.SpanKindInternal
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, component+"."+operation,
		trace.WithSpanKind(kind),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan sets the span status from err and ends it. A canceled context is
// recorded as an event, not a failure: the request was superseded.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, context.Canceled):
		span.AddEvent("canceled")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// GetTraceID returns the trace ID in ctx, or "" when there is none.
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
