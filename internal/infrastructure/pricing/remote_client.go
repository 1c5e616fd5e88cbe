// Package pricing calls the remote pricing service.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shadecraft/backend/internal/domain/shared/strategy"
	"github.com/shadecraft/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxResponseSize caps the body read from the pricing service
const maxResponseSize = 64 * 1024

// DefaultTimeout bounds one remote pricing call
const DefaultTimeout = 3 * time.Second

var _ strategy.PricingStrategy = (*RemotePricingClient)(nil)

// quoteResponse is the pricing service payload. Price may be a JSON number or string.
type quoteResponse struct {
	Price        *decimal.Decimal `json:"price"`
	AppliedRules []string         `json:"applied_rules,omitempty"`
}

// RemotePricingClient is the remote PricingStrategy. Every failure, including
// non-2xx responses and malformed payloads, is a strategy.PricingUnavailableError.
type RemotePricingClient struct {
	strategy.BaseStrategy
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *telemetry.ConfiguratorMetrics
}

// Option configures a RemotePricingClient
type Option func(*RemotePricingClient)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(r *RemotePricingClient) {
		r.httpClient = c
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *RemotePricingClient) {
		r.logger = l
	}
}

// WithMetrics records call latency and outcome
func WithMetrics(m *telemetry.ConfiguratorMetrics) Option {
	return func(r *RemotePricingClient) {
		r.metrics = m
	}
}

// NewRemotePricingClient creates a client for the service at baseURL
func NewRemotePricingClient(baseURL string, timeout time.Duration, opts ...Option) (*RemotePricingClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("pricing: invalid base URL %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &RemotePricingClient{
		BaseStrategy: strategy.NewBaseStrategy(
			"remote",
			"Remote pricing asks the pricing service for an authoritative price",
		),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// CalculatePrice implements strategy.PricingStrategy
func (r *RemotePricingClient) CalculatePrice(ctx context.Context, pricingCtx strategy.PricingContext) (strategy.PricingResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "pricing", "remote_quote", trace.SpanKindClient,
		telemetry.ProductID(pricingCtx.ProductID),
	)

	start := time.Now()
	result, err := r.fetch(ctx, pricingCtx)
	if r.metrics != nil {
		r.metrics.RecordRemotePricing(ctx, time.Since(start), err == nil)
	}
	if err == nil {
		span.SetAttributes(telemetry.PriceSource(result.Source.String()))
	}
	telemetry.EndSpan(span, err)
	if err != nil {
		r.logger.Debug("Remote pricing call failed",
			zap.String("product_id", pricingCtx.ProductID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return strategy.PricingResult{}, strategy.NewPricingUnavailableError(err)
	}
	return result, nil
}

// QuoteURL builds the request URL for pricingCtx
func (r *RemotePricingClient) QuoteURL(pricingCtx strategy.PricingContext) (string, error) {
	q := url.Values{}
	q.Set("product_id", pricingCtx.ProductID)
	q.Set("width", pricingCtx.Width.String())
	q.Set("height", pricingCtx.Height.String())
	if len(pricingCtx.Options) > 0 {
		raw, err := json.Marshal(pricingCtx.Options)
		if err != nil {
			return "", fmt.Errorf("encode options: %w", err)
		}
		q.Set("options", string(raw))
	}
	return r.baseURL + "/pricing?" + q.Encode(), nil
}

func (r *RemotePricingClient) fetch(ctx context.Context, pricingCtx strategy.PricingContext) (strategy.PricingResult, error) {
	endpoint, err := r.QuoteURL(pricingCtx)
	if err != nil {
		return strategy.PricingResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return strategy.PricingResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return strategy.PricingResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return strategy.PricingResult{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return strategy.PricingResult{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var payload quoteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return strategy.PricingResult{}, fmt.Errorf("decode response: %w", err)
	}
	// the remote price is authoritative; its value is not checked
	if payload.Price == nil {
		return strategy.PricingResult{}, errors.New("response has no price")
	}

	rules := payload.AppliedRules
	if len(rules) == 0 {
		rules = []string{"remote"}
	}
	return strategy.PricingResult{
		Price:        *payload.Price,
		Source:       strategy.PriceSourceRemote,
		AppliedRules: rules,
	}, nil
}
