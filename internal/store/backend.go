package store

import (
	"context"
	"fmt"
	"regexp"
	"sync"
)

// Backend persists whole collection documents.
//
// Implementations must be safe for concurrent use. They do not need to
// coordinate read-modify-write cycles; Store does that.
type Backend interface {
	// Load returns the persisted document for collection.
	// A collection that was never saved returns (nil, nil).
	Load(ctx context.Context, collection string) ([]byte, error)

	// Save replaces the persisted document for collection.
	Save(ctx context.Context, collection string, data []byte) error
}

var collectionPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateCollection checks that name is a lower-case identifier usable as
// a file name, table key or object key.
func ValidateCollection(name string) error {
	if !collectionPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

// MemoryBackend keeps documents in process memory.
// It is used by tests and by tooling that does not need durability.
type MemoryBackend struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	saves int
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

// Load implements Backend.
func (m *MemoryBackend) Load(_ context.Context, collection string) ([]byte, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[collection]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

// Save implements Backend.
func (m *MemoryBackend) Save(_ context.Context, collection string, data []byte) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[collection] = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Saves returns how many times Save has succeeded.
func (m *MemoryBackend) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
