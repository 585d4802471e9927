// Package store holds the logic for persisting a configuration.
package store

import "github.com/klever-desktop/core/config"

// Store is a store for the configuration data.
type Store interface {
	// Get returns the stored configuration.
	Get() *config.Config

	// Set writes a new configuration to persistence.
	Set(data *config.Config) error

	// GetActive returns the configuration that has been set as active
	// before, otherwise the stored configuration.
	GetActive() *config.Config

	// SetActive keeps the given configuration as active in memory. It
	// can be retrieved later with GetActive().
	SetActive(data *config.Config) error
}

// DataVersion is used to probe the version of a stored configuration.
type DataVersion struct {
	Version int64 `json:"version"`
}
