// Package cart hands configured products to the storefront cart service.
package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// maxErrorBody caps how much of an error response is kept for the message
const maxErrorBody = 4 * 1024

var _ configurator.Cart = (*HTTPCartClient)(nil)

// HTTPCartClient posts cart items to {base}/cart/items
type HTTPCartClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPCartClient creates a client for the cart service at baseURL
func NewHTTPCartClient(baseURL string, timeout time.Duration) (*HTTPCartClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("cart: invalid base URL %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPCartClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Add implements configurator.Cart
func (c *HTTPCartClient) Add(ctx context.Context, item configurator.CartItem) error {
	ctx, span := telemetry.StartSpan(ctx, "cart", "add", trace.SpanKindClient,
		telemetry.ProductID(item.ProductID),
	)
	err := c.post(ctx, item)
	telemetry.EndSpan(span, err)
	return err
}

func (c *HTTPCartClient) post(ctx context.Context, item configurator.CartItem) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("cart: failed to marshal item: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cart/items", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cart: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cart: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("cart: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return nil
}
