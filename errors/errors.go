// Package errors provides error types and utilities for the resque library.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotConnected   = errors.New("not connected")
	ErrNotFound       = errors.New("key not found")
	ErrNotReady       = errors.New("worker not ready")
	ErrShutdown       = errors.New("shutting down")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrEmptyClassName = errors.New("class name cannot be empty")
	ErrNilJobFunc     = errors.New("job function cannot be nil")
)

// StoreError represents store-level errors
type StoreError struct {
	Op  string // operation being performed
	Key string // store key (if applicable)
	Err error  // underlying error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store %s on %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// JobError represents job execution errors
type JobError struct {
	Class string // job class
	Queue string // queue name
	Err   error  // underlying error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s on queue %s: %v", e.Class, e.Queue, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// ConnectionError represents connection-related errors
type ConnectionError struct {
	URI string // connection URI (may be redacted)
	Err error  // underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s: %v", e.URI, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Temporary() bool {
	// Implement net.Error interface for timeout detection
	if t, ok := e.Err.(interface{ Temporary() bool }); ok {
		return t.Temporary()
	}
	return false
}

func (e *ConnectionError) Timeout() bool {
	// Implement net.Error interface for timeout detection
	if t, ok := e.Err.(interface{ Timeout() bool }); ok {
		return t.Timeout()
	}
	return false
}

// SerializationError represents serialization/deserialization errors
type SerializationError struct {
	Format string // serialization format
	Err    error  // underlying error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization (%s): %v", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewStoreError creates a new store error
func NewStoreError(op, key string, err error) error {
	return &StoreError{Op: op, Key: key, Err: err}
}

// NewJobError creates a new job error
func NewJobError(class, queue string, err error) error {
	return &JobError{Class: class, Queue: queue, Err: err}
}

// NewConnectionError creates a new connection error
func NewConnectionError(uri string, err error) error {
	return &ConnectionError{URI: uri, Err: err}
}

// NewSerializationError creates a new serialization error
func NewSerializationError(format string, err error) error {
	return &SerializationError{Format: format, Err: err}
}
