package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shadecraft/backend/internal/domain/shared"
	"github.com/shadecraft/backend/internal/domain/shared/strategy"
)

// PricingRegistry holds the pricing strategies an operator can pick from and
// which one quotes by default.
type PricingRegistry struct {
	mu          sync.RWMutex
	strategies  map[string]strategy.PricingStrategy
	defaultName string
}

// StrategyInfo is a registry listing entry
type StrategyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// NewRegistry creates an empty registry
func NewRegistry() *PricingRegistry {
	return &PricingRegistry{strategies: make(map[string]strategy.PricingStrategy)}
}

// Register adds a strategy under its own name
func (r *PricingRegistry) Register(s strategy.PricingStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("%w: pricing strategy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.strategies[name] = s
	return nil
}

// Unregister removes a strategy, clearing the default if it pointed there
func (r *PricingRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; !exists {
		return fmt.Errorf("%w: pricing strategy '%s' not found", shared.ErrNotFound, name)
	}
	delete(r.strategies, name)
	if r.defaultName == name {
		r.defaultName = ""
	}
	return nil
}

// Get returns a strategy by name; an empty name resolves the default
func (r *PricingRegistry) Get(name string) (strategy.PricingStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		if r.defaultName == "" {
			return nil, fmt.Errorf("%w: no default pricing strategy set", shared.ErrNotFound)
		}
		name = r.defaultName
	}
	s, exists := r.strategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: pricing strategy '%s' not found", shared.ErrNotFound, name)
	}
	return s, nil
}

// GetOrDefault returns the named strategy, or the default when the name is unknown
func (r *PricingRegistry) GetOrDefault(name string) strategy.PricingStrategy {
	if s, err := r.Get(name); err == nil {
		return s
	}
	s, _ := r.Get("")
	return s
}

// SetDefault selects the strategy used for quotes
func (r *PricingRegistry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; !exists {
		return fmt.Errorf("%w: pricing strategy '%s' not found", shared.ErrNotFound, name)
	}
	r.defaultName = name
	return nil
}

// Default returns the default strategy name, empty when none is set
func (r *PricingRegistry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}

// Has reports whether name is registered
func (r *PricingRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.strategies[name]
	return exists
}

// Names returns the registered names, sorted
func (r *PricingRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe lists every strategy with its description, sorted by name
func (r *PricingRegistry) Describe() []StrategyInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]StrategyInfo, 0, len(r.strategies))
	for name, s := range r.strategies {
		out = append(out, StrategyInfo{
			Name:        name,
			Description: s.Description(),
			Default:     name == r.defaultName,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
