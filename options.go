package resque

import (
	"log/slog"
	"time"

	"github.com/aaronvb/coffee-resque/hostenv"
	"github.com/aaronvb/coffee-resque/registry"
)

// WorkerOption is a function that modifies worker configuration.
type WorkerOption func(*Worker)

// WithName sets the worker's base name. Defaults to the hostname.
func WithName(name string) WorkerOption {
	return func(w *Worker) {
		w.name = name
	}
}

// WithTimeout sets the empty-queue backoff, overriding the Connection's
// default.
func WithTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithCallbacks replaces the Connection's default callback table.
func WithCallbacks(r *registry.Registry) WorkerOption {
	return func(w *Worker) {
		if r != nil {
			w.callbacks = r
		}
	}
}

// WithEvents sets the lifecycle event observer.
func WithEvents(e Events) WorkerOption {
	return func(w *Worker) {
		if e != nil {
			w.events = e
		}
	}
}

// WithEnv substitutes the host environment, used by tests.
func WithEnv(env hostenv.Env) WorkerOption {
	return func(w *Worker) {
		if env != nil {
			w.env = env
		}
	}
}

// WithProcessEnumerator substitutes the process enumerator used by
// dead-worker pruning.
func WithProcessEnumerator(procs hostenv.ProcessEnumerator) WorkerOption {
	return func(w *Worker) {
		if procs != nil {
			w.procs = procs
		}
	}
}

// WithLogger sets the worker's logger.
func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
