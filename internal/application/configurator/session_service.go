package configurator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shadecraft/backend/internal/domain/catalog"
	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Session defaults
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultCartTimeout = 5 * time.Second
)

// session is one live configurator, the server-side equivalent of a browser tab
type session struct {
	mu        sync.Mutex
	id        string
	config    *configurator.Configuration
	tracker   PriceTracker
	selection configurator.ComparisonSelection
	cancel    context.CancelFunc
	lastSeen  time.Time
}

// SessionConfig configures a SessionService
type SessionConfig struct {
	TTL         time.Duration
	CartTimeout time.Duration
}

// SessionService drives live configurator sessions. Every dimension or
// option change reprices immediately.
type SessionService struct {
	mu          sync.RWMutex
	sessions    map[string]*session
	catalog     catalog.Catalog
	pricing     *PricingService
	configs     *ConfigurationService
	comparisons *ComparisonService
	cart        configurator.Cart
	logger      *zap.Logger
	metrics     *telemetry.ConfiguratorMetrics
	idempotency shared.IdempotencyStore
	idemTTL     time.Duration
	ttl         time.Duration
	cartTimeout time.Duration
	now         func() time.Time
	wg          sync.WaitGroup
}

// NewSessionService creates a new SessionService. cart may be nil, in which
// case add-to-cart only validates and returns the item.
func NewSessionService(
	productCatalog catalog.Catalog,
	pricing *PricingService,
	configs *ConfigurationService,
	comparisons *ComparisonService,
	cart configurator.Cart,
	cfg SessionConfig,
	logger *zap.Logger,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.CartTimeout <= 0 {
		cfg.CartTimeout = DefaultCartTimeout
	}
	return &SessionService{
		sessions:    make(map[string]*session),
		catalog:     productCatalog,
		pricing:     pricing,
		configs:     configs,
		comparisons: comparisons,
		cart:        cart,
		logger:      logger,
		ttl:         cfg.TTL,
		cartTimeout: cfg.CartTimeout,
		now:         time.Now,
	}
}

// SetMetrics sets the metrics collector
func (s *SessionService) SetMetrics(m *telemetry.ConfiguratorMetrics) {
	s.metrics = m
}

// SetIdempotencyStore enables de-duplication of add-to-cart requests that
// carry a client key
func (s *SessionService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}
	s.idempotency = store
	s.idemTTL = ttl
}

// Start opens a session for productID seeded from the product defaults
func (s *SessionService) Start(ctx context.Context, productID string) (*SessionView, error) {
	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	sess := &session{
		id:       uuid.New().String(),
		config:   configurator.NewConfiguration(*product),
		lastSeen: s.now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Debug("Configurator session started",
		zap.String("session_id", sess.id),
		zap.String("product_id", productID),
	)

	if err := s.reprice(ctx, sess); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// Get returns the current view of a session
func (s *SessionService) Get(_ context.Context, id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// End discards a session and cancels its in-flight pricing
func (s *SessionService) End(_ context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return shared.ErrSessionNotFound
	}
	sess.stopPricing()
	return nil
}

// SetWidth sets the width from raw whole-inch input and a fraction
func (s *SessionService) SetWidth(ctx context.Context, id string, req DimensionRequest) (*SessionView, error) {
	return s.mutate(ctx, id, true, func(c *configurator.Configuration) error {
		return c.SetWidth(string(req.Whole), req.Fraction)
	})
}

// SetHeight sets the height from raw whole-inch input and a fraction
func (s *SessionService) SetHeight(ctx context.Context, id string, req DimensionRequest) (*SessionView, error) {
	return s.mutate(ctx, id, true, func(c *configurator.Configuration) error {
		return c.SetHeight(string(req.Whole), req.Fraction)
	})
}

// SetOption sets one option value
func (s *SessionService) SetOption(ctx context.Context, id string, req OptionRequest) (*SessionView, error) {
	return s.mutate(ctx, id, true, func(c *configurator.Configuration) error {
		c.SetOption(req.Name, req.Value)
		return nil
	})
}

// SetQuantity sets the quantity. Unit price does not depend on quantity,
// so no reprice happens.
func (s *SessionService) SetQuantity(ctx context.Context, id string, req QuantityRequest) (*SessionView, error) {
	return s.mutate(ctx, id, false, func(c *configurator.Configuration) error {
		c.SetQuantity(req.Quantity)
		return nil
	})
}

// SaveCurrent persists the live configuration under name
func (s *SessionService) SaveCurrent(ctx context.Context, id, name string) (*ConfigurationResponse, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	snap := sess.config.Snapshot()
	sess.mu.Unlock()

	return s.configs.SaveSnapshot(ctx, name, snap)
}

// LoadSaved restores a saved configuration into the session and reprices
func (s *SessionService) LoadSaved(ctx context.Context, id, configID string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	saved, err := s.configs.Find(ctx, configID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.config.Load(*saved)
	sess.mu.Unlock()

	if err := s.reprice(ctx, sess); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// SelectForComparison adds a saved configuration to the comparison.
// A fourth selection fails with shared.ErrComparisonLimit and changes nothing.
func (s *SessionService) SelectForComparison(ctx context.Context, id, configID string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.configs.Find(ctx, configID); err != nil {
		return nil, err
	}

	sess.mu.Lock()
	err = sess.selection.Select(configID)
	sess.mu.Unlock()
	if err != nil {
		if errors.Is(err, shared.ErrComparisonLimit) {
			s.logger.Info("Comparison limit reached",
				zap.String("session_id", id),
				zap.String("configuration_id", configID),
			)
			if s.metrics != nil {
				s.metrics.RecordComparisonRejected(ctx)
			}
		}
		return nil, err
	}
	return s.view(sess), nil
}

// DeselectForComparison removes a configuration from the comparison
func (s *SessionService) DeselectForComparison(_ context.Context, id, configID string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	sess.selection.Deselect(configID)
	sess.mu.Unlock()
	return s.view(sess), nil
}

// Comparison returns the comparison table for the session. The current row
// uses the price already shown; saved rows use the local formula.
func (s *SessionService) Comparison(ctx context.Context, id string) (*ComparisonResponse, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	current := configurator.CurrentEntry{Snapshot: sess.config.Snapshot()}
	if result, _, ok := sess.tracker.Latest(); ok {
		current.Quote = &result
	}
	ids := sess.selection.IDs()
	sess.mu.Unlock()

	resp := s.comparisons.Build(ctx, current, ids)
	return &resp, nil
}

// AddToCart hands the configured product to the cart once every option is
// selected. The cart call runs in the background; failures are logged only.
// A non-empty idempotencyKey already seen for this session returns
// shared.ErrDuplicateRequest.
func (s *SessionService) AddToCart(ctx context.Context, id, idempotencyKey string) (*configurator.CartItem, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	snap := sess.config.Snapshot()
	result, _, ok := sess.tracker.Latest()
	sess.mu.Unlock()

	if err := snap.ReadyForCheckout(); err != nil {
		return nil, err
	}
	if err := s.claim(ctx, id, idempotencyKey); err != nil {
		return nil, err
	}
	if !ok {
		result = s.pricing.LocalQuote(snap)
	}

	item := configurator.NewCartItem(snap, result.Price)
	if s.cart == nil {
		return &item, nil
	}

	cartCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cartTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		err := s.cart.Add(cartCtx, item)
		if err != nil {
			s.logger.Error("Add to cart failed",
				zap.String("session_id", id),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			s.release(cartCtx, id, idempotencyKey)
		}
		if s.metrics != nil {
			s.metrics.RecordCartAdd(cartCtx, err == nil)
		}
	}()
	return &item, nil
}

func (s *SessionService) claim(ctx context.Context, sessionID, key string) error {
	if key == "" || s.idempotency == nil {
		return nil
	}
	claimed, err := s.idempotency.Claim(ctx, "cart:"+sessionID+":"+key, s.idemTTL)
	if err != nil {
		// an unreachable store must not block checkout
		s.logger.Warn("Idempotency store unavailable", zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}
	if !claimed {
		s.logger.Info("Duplicate add to cart ignored", zap.String("session_id", sessionID))
		return shared.ErrDuplicateRequest
	}
	return nil
}

// release lets a failed add-to-cart be retried with the same key
func (s *SessionService) release(ctx context.Context, sessionID, key string) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Release(ctx, "cart:"+sessionID+":"+key); err != nil {
		s.logger.Warn("Failed to release idempotency key", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Wait blocks until background cart calls finish
func (s *SessionService) Wait() {
	s.wg.Wait()
}

// ActiveSessions returns the number of live sessions
func (s *SessionService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle longer than the TTL and returns how many were removed
func (s *SessionService) Sweep(now time.Time) int {
	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastSeen)
		sess.mu.Unlock()
		if idle > s.ttl {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.stopPricing()
	}
	if len(expired) > 0 {
		s.logger.Debug("Evicted idle configurator sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// StartJanitor sweeps idle sessions every interval until ctx is done
func (s *SessionService) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				s.Sweep(t)
			}
		}
	}()
}

func (s *SessionService) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, shared.ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.lastSeen = s.now()
	sess.mu.Unlock()
	return sess, nil
}

func (s *SessionService) mutate(ctx context.Context, id string, reprice bool, fn func(*configurator.Configuration) error) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	err = fn(sess.config)
	sess.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if reprice {
		if err := s.reprice(ctx, sess); err != nil {
			return nil, err
		}
	}
	return s.view(sess), nil
}

// reprice prices the current snapshot. Starting a new request cancels the
// previous in-flight one, and the tracker drops any response that arrives
// after a newer one was applied.
func (s *SessionService) reprice(ctx context.Context, sess *session) error {
	sess.mu.Lock()
	snap := sess.config.Snapshot()
	seq := sess.tracker.Next()
	if sess.cancel != nil {
		sess.cancel()
	}
	pricingCtx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel
	sess.mu.Unlock()
	defer cancel()

	pricingCtx, span := telemetry.StartSpan(pricingCtx, "session", "reprice", trace.SpanKindInternal,
		telemetry.SessionID(sess.id),
		telemetry.ProductID(snap.Product.ID),
		telemetry.PricingSequence(seq),
	)

	result, err := s.pricing.Quote(pricingCtx, snap)
	if err == nil {
		span.SetAttributes(telemetry.PriceSource(result.Source.String()))
	}
	telemetry.EndSpan(span, err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// Superseded by a newer change; that request applies its own price.
		s.logger.Debug("Pricing request superseded",
			zap.String("session_id", sess.id),
			zap.Uint64("sequence", seq),
		)
		return nil
	}

	if !sess.tracker.Apply(seq, result) {
		s.logger.Debug("Discarded stale price",
			zap.String("session_id", sess.id),
			zap.Uint64("sequence", seq),
		)
		return nil
	}
	return nil
}

func (s *SessionService) view(sess *session) *SessionView {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap := sess.config.Snapshot()
	v := &SessionView{
		ID:             sess.id,
		ProductID:      snap.Product.ID,
		ProductTitle:   snap.Product.Title,
		Width:          toDimensionView(snap.Width),
		Height:         toDimensionView(snap.Height),
		WidthRange:     snap.Product.WidthRange,
		HeightRange:    snap.Product.HeightRange,
		Options:        snap.Options,
		Quantity:       snap.Quantity,
		MissingOptions: snap.MissingOptions(),
		Comparing:      sess.selection.IDs(),
	}
	if v.MissingOptions == nil {
		v.MissingOptions = []string{}
	}
	if result, seq, ok := sess.tracker.Latest(); ok {
		price := result.Price
		total := configurator.LineTotal(price, snap.Quantity)
		v.Price = &price
		v.Total = &total
		v.PriceSource = result.Source.String()
		v.PriceSequence = seq
	}
	return v
}

func (sess *session) stopPricing() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.cancel != nil {
		sess.cancel()
		sess.cancel = nil
	}
}
