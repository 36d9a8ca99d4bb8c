// Package store provides the durable key/value substrate the session and
// guess-history stores are written against.
//
// Implementations:
//   - memory: map guarded by RWMutex; tests and ephemeral runs.
//   - SQL:    kv_store table through internal/database (survives restarts).
//   - Namespace: prefixes every key, giving each device its own keyspace.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("not found")

// Store is a synchronous get/set-by-key blob store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type namespaced struct {
	base   Store
	prefix string
}

// Namespace scopes s so that every key is stored as prefix + ":" + key.
func Namespace(s Store, prefix string) Store {
	return &namespaced{base: s, prefix: prefix + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.base.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.base.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.base.Delete(ctx, n.prefix+key)
}
