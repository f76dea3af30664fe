// Package store holds the durable key/value backends that stand in for a
// visitor's client storage.
package store

import (
	"context"
	"strings"

	dErrors "sitekit/pkg/domain-errors"
)

// Error Contract:
// - Get returns ErrNotFound when the key has never been written
// - Backends wrap infrastructure failures with context
// - BreakerStore returns ErrUnavailable while its circuit is open
var (
	ErrNotFound    = dErrors.New(dErrors.CodeNotFound, "storage key not found")
	ErrUnavailable = dErrors.New(dErrors.CodeUnavailable, "storage unavailable")
)

// Store is a synchronous string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// ScopedStore namespaces every key so one shared backend can hold the
// storage of many visitors.
type ScopedStore struct {
	inner     Store
	namespace string
}

// Scoped returns a view of inner where every key is prefixed with namespace.
func Scoped(inner Store, namespace string) *ScopedStore {
	return &ScopedStore{inner: inner, namespace: strings.TrimSuffix(namespace, ":")}
}

func (s *ScopedStore) Get(ctx context.Context, key string) (string, error) {
	return s.inner.Get(ctx, s.key(key))
}

func (s *ScopedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.key(key), value)
}

// Namespace returns the prefix without separator.
func (s *ScopedStore) Namespace() string {
	return s.namespace
}

func (s *ScopedStore) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}
