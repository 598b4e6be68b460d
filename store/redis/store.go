// Package redis implements the store interface on Redis using redigo.
package redis

import (
	"context"
	"fmt"

	"github.com/aaronvb/coffee-resque/errors"
	"github.com/gomodule/redigo/redis"
)

// Store implements store.Store backed by a Redis connection pool.
type Store struct {
	pool    *redis.Pool
	options Options
}

// NewStore creates a new Redis store. Call Connect before use.
func NewStore(options Options) *Store {
	return &Store{options: options}
}

// Connect establishes the connection pool and verifies it with a ping.
func (s *Store) Connect(ctx context.Context) error {
	s.pool = CreatePool(s.options)

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return errors.NewConnectionError(s.options.URI,
			fmt.Errorf("failed to get connection: %w", err))
	}
	defer conn.Close()

	if _, err := conn.Do("PING"); err != nil {
		return errors.NewConnectionError(s.options.URI,
			fmt.Errorf("ping failed: %w", err))
	}

	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		return s.pool.Close()
	}
	return nil
}

// Health checks the connection health.
func (s *Store) Health() error {
	if s.pool == nil {
		return errors.ErrNotConnected
	}

	conn := s.pool.Get()
	defer conn.Close()

	if _, err := conn.Do("PING"); err != nil {
		return errors.NewConnectionError(s.options.URI,
			fmt.Errorf("health check failed: %w", err))
	}

	return nil
}

// Push appends a value to the tail of a list.
func (s *Store) Push(ctx context.Context, key string, value []byte) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Do("RPUSH", key, value); err != nil {
		return errors.NewStoreError("push", key, err)
	}
	return nil
}

// Pop removes and returns the head of a list, or (nil, nil) when empty.
func (s *Store) Pop(ctx context.Context, key string) ([]byte, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	reply, err := conn.Do("LPOP", key)
	if err != nil {
		return nil, errors.NewStoreError("pop", key, err)
	}
	if reply == nil {
		return nil, nil
	}

	data, ok := reply.([]byte)
	if !ok {
		return nil, errors.NewStoreError("pop", key,
			fmt.Errorf("unexpected data type: %T", reply))
	}
	return data, nil
}

// ListLength returns the length of a list.
func (s *Store) ListLength(ctx context.Context, key string) (int64, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	length, err := redis.Int64(conn.Do("LLEN", key))
	if err != nil {
		return 0, errors.NewStoreError("llen", key, err)
	}
	return length, nil
}

// AddToSet adds a member to a set.
func (s *Store) AddToSet(ctx context.Context, key, member string) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Do("SADD", key, member); err != nil {
		return errors.NewStoreError("sadd", key, err)
	}
	return nil
}

// RemoveFromSet removes a member from a set.
func (s *Store) RemoveFromSet(ctx context.Context, key, member string) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Do("SREM", key, member); err != nil {
		return errors.NewStoreError("srem", key, err)
	}
	return nil
}

// Members returns all members of a set.
func (s *Store) Members(ctx context.Context, key string) ([]string, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	members, err := redis.Strings(conn.Do("SMEMBERS", key))
	if err != nil {
		return nil, errors.NewStoreError("smembers", key, err)
	}
	return members, nil
}

// SetSize returns the cardinality of a set.
func (s *Store) SetSize(ctx context.Context, key string) (int64, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	size, err := redis.Int64(conn.Do("SCARD", key))
	if err != nil {
		return 0, errors.NewStoreError("scard", key, err)
	}
	return size, nil
}

// Increment atomically increments a counter and returns the new value.
func (s *Store) Increment(ctx context.Context, key string) (int64, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	value, err := redis.Int64(conn.Do("INCR", key))
	if err != nil {
		return 0, errors.NewStoreError("incr", key, err)
	}
	return value, nil
}

// GetInt returns an integer value, or 0 when the key is missing.
func (s *Store) GetInt(ctx context.Context, key string) (int64, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	value, err := redis.Int64(conn.Do("GET", key))
	if err == redis.ErrNil {
		return 0, nil
	}
	if err != nil {
		return 0, errors.NewStoreError("get", key, err)
	}
	return value, nil
}

// Set stores a plain string value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Do("SET", key, value); err != nil {
		return errors.NewStoreError("set", key, err)
	}
	return nil
}

// Get returns a plain string value, or errors.ErrNotFound when missing.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	value, err := redis.String(conn.Do("GET", key))
	if err == redis.ErrNil {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", errors.NewStoreError("get", key, err)
	}
	return value, nil
}

// Del deletes the given keys.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	args := make([]interface{}, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	if _, err := conn.Do("DEL", args...); err != nil {
		return errors.NewStoreError("del", "", err)
	}
	return nil
}

func (s *Store) conn(ctx context.Context) (redis.Conn, error) {
	if s.pool == nil {
		return nil, errors.ErrNotConnected
	}
	return s.pool.GetContext(ctx)
}
