package catalog

import (
	"context"
	"sync"

	domain "github.com/shadecraft/backend/internal/domain/catalog"
	"github.com/shadecraft/backend/internal/domain/shared"
)

var _ domain.Catalog = (*MemoryCatalog)(nil)

// MemoryCatalog serves products from memory in definition order. Callers get
// copies, never the stored products.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products []domain.Product
	index    map[string]int
}

// NewMemoryCatalog creates a catalog holding products
func NewMemoryCatalog(products []domain.Product) *MemoryCatalog {
	c := &MemoryCatalog{}
	c.Replace(products)
	return c
}

// Replace swaps the whole product set, e.g. after reloading the catalog file
func (c *MemoryCatalog) Replace(products []domain.Product) {
	stored := make([]domain.Product, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		stored[i] = p.Clone()
		index[p.ID] = i
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = stored
	c.index = index
}

// FindByID implements domain.Catalog
func (c *MemoryCatalog) FindByID(_ context.Context, id string) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	p := c.products[i].Clone()
	return &p, nil
}

// FindAll implements domain.Catalog
func (c *MemoryCatalog) FindAll(_ context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, len(c.products))
	for i, p := range c.products {
		out[i] = p.Clone()
	}
	return out, nil
}

// Len returns the number of products
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}
