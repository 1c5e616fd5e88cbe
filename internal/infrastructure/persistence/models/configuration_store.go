package models

import "time"

// ConfigurationStoreEntry is one key/value row of the configuration store
type ConfigurationStoreEntry struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ConfigurationStoreEntry) TableName() string {
	return "configuration_store"
}
