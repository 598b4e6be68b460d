// Package hostenv isolates process-global state behind an explicit capability
// so the worker runtime can be tested without touching the real process: pid
// and hostname lookup, process title, signal registration, and process exit.
package hostenv

import (
	"os"
	"os/signal"
)

// Env is the host environment capability handed to a worker.
type Env interface {
	// Pid returns the current process id.
	Pid() int

	// Hostname returns the host's name, or a fallback when unavailable.
	Hostname() string

	// SetProcessTitle updates the cosmetic process status label.
	SetProcessTitle(title string)

	// Notify registers the channel to receive the given signals.
	Notify(c chan<- os.Signal, sigs ...os.Signal)

	// Exit terminates the process with the given code.
	Exit(code int)
}

// System is the real host environment.
type System struct{}

// NewSystem returns the real host environment.
func NewSystem() *System {
	return &System{}
}

// Pid returns os.Getpid.
func (s *System) Pid() int {
	return os.Getpid()
}

// Hostname returns os.Hostname, or "localhost" when it fails.
func (s *System) Hostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return hostname
}

// SetProcessTitle is a no-op: the Go runtime does not expose argv rewriting.
// The title is cosmetic only; fakes record it for tests.
func (s *System) SetProcessTitle(title string) {}

// Notify registers the channel with os/signal.
func (s *System) Notify(c chan<- os.Signal, sigs ...os.Signal) {
	signal.Notify(c, sigs...)
}

// Exit terminates the process.
func (s *System) Exit(code int) {
	os.Exit(code)
}
