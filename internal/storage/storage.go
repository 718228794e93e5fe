// Package storage handles the saving and retrieving of the applications data.
// Everything is stored as opaque values under string keys, the same way the
// web client kept its records in local storage.
package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when nothing is stored under the key
var ErrNotFound = errors.New("key not found")

// Store is a minimal key value store
type Store interface {
	// Get returns the value stored under key or ErrNotFound
	Get(key string) ([]byte, error)
	// Set replaces the value stored under key
	Set(key string, value []byte) error
}

// Closer is implemented by stores holding on to resources
type Closer interface {
	Close() error
}

// Backend names accepted by Open
const (
	BackendPlain  = "plain"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates the store for the configured backend inside datadir
func Open(backend, datadir string) (Store, error) {
	switch backend {
	case BackendPlain, "":
		return NewPlain(datadir)
	case BackendSQLite:
		return OpenSQLite(datadir)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}
