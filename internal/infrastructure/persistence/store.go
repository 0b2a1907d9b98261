// Package persistence provides the durable key-value stores behind the cart.
package persistence

import (
	"fmt"

	"github.com/preciosya/backend/internal/domain"
)

// Store types accepted by Open
const (
	TypeMemory = "memory"
	TypeFile   = "file"
	TypeSQLite = "sqlite"
)

// Open returns the key-value store of the given type rooted at path
func Open(storeType, path string) (domain.KeyValueStore, error) {
	switch storeType {
	case TypeMemory:
		return NewMemoryStore(), nil
	case TypeFile:
		return NewFileStore(path)
	case TypeSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store type %q", storeType)
	}
}
