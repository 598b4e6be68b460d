// Package memory implements the store interface in process memory. It backs
// tests and embedded single-process use; it shares nothing across processes.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/aaronvb/coffee-resque/errors"
)

// Store implements store.Store using mutex-guarded maps.
type Store struct {
	mu     sync.Mutex
	lists  map[string][][]byte
	sets   map[string]map[string]struct{}
	values map[string]string
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		lists:  make(map[string][][]byte),
		sets:   make(map[string]map[string]struct{}),
		values: make(map[string]string),
	}
}

// Push appends a value to the tail of a list.
func (s *Store) Push(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(value))
	copy(buf, value)
	s.lists[key] = append(s.lists[key], buf)
	return nil
}

// Pop removes and returns the head of a list, or (nil, nil) when empty.
func (s *Store) Pop(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	if len(list) == 0 {
		return nil, nil
	}

	head := list[0]
	s.lists[key] = list[1:]
	return head, nil
}

// ListLength returns the length of a list.
func (s *Store) ListLength(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.lists[key])), nil
}

// AddToSet adds a member to a set.
func (s *Store) AddToSet(ctx context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	set[member] = struct{}{}
	return nil
}

// RemoveFromSet removes a member from a set.
func (s *Store) RemoveFromSet(ctx context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, ok := s.sets[key]; ok {
		delete(set, member)
	}
	return nil
}

// Members returns all members of a set.
func (s *Store) Members(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.sets[key]
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	return members, nil
}

// SetSize returns the cardinality of a set.
func (s *Store) SetSize(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.sets[key])), nil
}

// Increment atomically increments a counter and returns the new value.
func (s *Store) Increment(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, _ := strconv.ParseInt(s.values[key], 10, 64)
	value++
	s.values[key] = strconv.FormatInt(value, 10)
	return value, nil
}

// GetInt returns an integer value, or 0 when the key is missing.
func (s *Store) GetInt(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.values[key]
	if !ok {
		return 0, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.NewStoreError("get", key, err)
	}
	return value, nil
}

// Set stores a plain string value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Get returns a plain string value, or errors.ErrNotFound when missing.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return value, nil
}

// Del deletes the given keys from all keyspaces.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.lists, key)
		delete(s.sets, key)
		delete(s.values, key)
	}
	return nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}

// Health always reports healthy.
func (s *Store) Health() error {
	return nil
}
