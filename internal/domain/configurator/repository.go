package configurator

import (
	"context"
	"errors"
)

// StorageKey is the well-known key holding the serialised collection
const StorageKey = "shade_configurations"

// ErrStoreKeyNotFound is returned by a ConfigurationStore for an absent key
var ErrStoreKeyNotFound = errors.New("configuration store: key not found")

// ConfigurationStore is a durable key/value backend holding opaque blobs
type ConfigurationStore interface {
	// Get returns ErrStoreKeyNotFound when the key is absent
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// ConfigurationRepository persists named configurations.
//
// Reads never fail: a storage or decoding error is logged and reads
// degrade to an empty collection. Writes report storage errors.
type ConfigurationRepository interface {
	// Save assigns a fresh ID and CreatedAt and appends the record
	Save(ctx context.Context, cfg SavedConfiguration) (*SavedConfiguration, error)
	// List returns every record in insertion order
	List(ctx context.Context) []SavedConfiguration
	// GetByID returns shared.ErrConfigurationMissing when nothing matches
	GetByID(ctx context.Context, id string) (*SavedConfiguration, error)
	// GetByProduct returns the records for a product, possibly empty
	GetByProduct(ctx context.Context, productID string) []SavedConfiguration
	// Update merges patch into the record; false when the id is unknown
	Update(ctx context.Context, id string, patch ConfigurationPatch) (bool, error)
	// Delete removes the record; false when the id is unknown
	Delete(ctx context.Context, id string) (bool, error)
}
