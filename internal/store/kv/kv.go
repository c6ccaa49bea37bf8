// Package kv holds the key-value drivers behind the persisted store.
package kv

import (
	"fmt"

	"github.com/ikmich/package-deps-admin/internal/config"
)

// KV is a flat map from string keys to raw values.
type KV interface {
	// Get returns the value under key. A missing key is not an error.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is a no-op.
	Delete(key string) error
	Close() error
}

// Open returns the driver named by driver, backed by the file at path.
func Open(driver, path string) (KV, error) {
	switch driver {
	case config.StoreDriverJSON, "":
		return NewFile(path), nil
	case config.StoreDriverSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
