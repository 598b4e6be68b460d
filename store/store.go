// Package store defines the key-value store interface the queue and worker
// runtime are built on. The store is an external collaborator: its atomicity
// and persistence guarantees are assumed, not implemented here.
package store

import "context"

// Store is the list/set/counter surface required by the runtime. All methods
// operate on fully namespaced keys; key construction is the caller's concern.
type Store interface {
	// List operations. Push appends to the tail, Pop removes from the head.
	// Pop returns (nil, nil) when the list is empty.
	Push(ctx context.Context, key string, value []byte) error
	Pop(ctx context.Context, key string) ([]byte, error)
	ListLength(ctx context.Context, key string) (int64, error)

	// Set operations
	AddToSet(ctx context.Context, key, member string) error
	RemoveFromSet(ctx context.Context, key, member string) error
	Members(ctx context.Context, key string) ([]string, error)
	SetSize(ctx context.Context, key string) (int64, error)

	// Counters. GetInt returns 0 for missing keys.
	Increment(ctx context.Context, key string) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)

	// Plain values. Get returns errors.ErrNotFound for missing keys.
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error

	// Connection management
	Close() error
	Health() error
}
