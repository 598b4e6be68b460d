// Package registry provides a thread-safe callback table mapping job class
// names to job functions.
package registry

import (
	"sync"

	"github.com/aaronvb/coffee-resque/errors"
)

// JobFunc is the function signature for job callbacks. It receives the queue
// the job was dequeued from and the job's arguments, and returns a result
// value that is reported through the worker's success event.
type JobFunc func(queue string, args ...interface{}) (interface{}, error)

// Registry is a thread-safe job function registry
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]JobFunc
}

// New creates a new registry
func New() *Registry {
	return &Registry{
		jobs: make(map[string]JobFunc),
	}
}

// FromMap creates a registry pre-populated from a callback table. Entries
// with empty names or nil functions are skipped.
func FromMap(callbacks map[string]JobFunc) *Registry {
	r := New()
	for class, fn := range callbacks {
		r.Register(class, fn)
	}
	return r
}

// Register adds a job function for a class
func (r *Registry) Register(class string, fn JobFunc) error {
	if class == "" {
		return errors.ErrEmptyClassName
	}

	if fn == nil {
		return errors.ErrNilJobFunc
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs[class] = fn
	return nil
}

// Get retrieves a job function by class
func (r *Registry) Get(class string) (JobFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.jobs[class]
	return fn, ok
}

// List returns all registered classes
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	classes := make([]string, 0, len(r.jobs))
	for class := range r.jobs {
		classes = append(classes, class)
	}

	return classes
}

// Remove unregisters a job function
func (r *Registry) Remove(class string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.jobs, class)
}

// Clear removes all registered job functions
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs = make(map[string]JobFunc)
}
