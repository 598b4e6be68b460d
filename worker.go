package resque

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aaronvb/coffee-resque/hostenv"
	"github.com/aaronvb/coffee-resque/job"
	"github.com/aaronvb/coffee-resque/registry"
)

// Worker polls its queue set round-robin, executes job callbacks, and
// records success/failure statistics. Exactly one job is in flight at a
// time; the next poll is only scheduled after the previous dispatch and
// its accounting complete.
type Worker struct {
	conn      *Connection
	callbacks *registry.Registry
	env       hostenv.Env
	procs     hostenv.ProcessEnumerator
	events    Events
	logger    *slog.Logger
	timeout   time.Duration
	name      string

	// trackMu serializes registration-set mutations so a paused
	// worker's re-track cannot interleave with End's deregistration.
	trackMu sync.Mutex

	mu       sync.Mutex
	queues   []string
	identity string
	ready    bool
	running  bool
	shutdown bool
	ended    bool
	polling  bool
	started  bool
}

// NewWorker creates a worker bound to this Connection. The queues argument
// is the wildcard "*" (all queues registered at startup), a comma-separated
// list, or a single queue name. Construction triggers queue resolution and
// dead-worker pruning; call Start to begin polling.
func (c *Connection) NewWorker(ctx context.Context, queues string, opts ...WorkerOption) *Worker {
	w := &Worker{
		conn:      c,
		callbacks: c.callbacks,
		env:       hostenv.NewSystem(),
		procs:     hostenv.NewPS(),
		events:    NopEvents{},
		logger:    c.logger,
		timeout:   c.timeout,
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name == "" {
		w.name = w.env.Hostname()
	}

	go w.pruneDeadWorkers(ctx)

	if queues == Wildcard {
		go w.resolveQueues(ctx)
	} else {
		w.setQueues(ctx, splitQueues(queues))
	}

	return w
}

// Identity returns the worker's name:pid:queues identity, or "" before the
// queue set has resolved.
func (w *Worker) Identity() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.identity
}

// Queues returns the worker's queue rotation in its current order.
func (w *Worker) Queues() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.queues...)
}

// Ready reports whether queue resolution has completed.
func (w *Worker) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready
}

// Running reports whether the worker has been asked to run.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start begins the poll loop. Called before queue resolution completes it
// only records the intent to run; the loop starts once the worker is ready.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.ended {
		w.mu.Unlock()
		return
	}
	w.running = true
	if !w.ready || w.polling {
		w.mu.Unlock()
		return
	}
	w.polling = true
	first := !w.started
	w.started = true
	w.mu.Unlock()

	if first {
		w.init(ctx)
	} else {
		w.track(ctx)
	}

	w.logger.Info("worker started", "worker", w.Identity())
	go w.poll(ctx)
}

// End stops the worker, removes it from the registration set, and deletes
// its per-worker keys. Safe to call more than once.
func (w *Worker) End(ctx context.Context) error {
	w.mu.Lock()
	if w.ended {
		w.mu.Unlock()
		return nil
	}
	w.ended = true
	w.running = false
	id := w.identity
	w.mu.Unlock()

	w.logger.Info("worker ending", "worker", id)
	if id == "" {
		return nil
	}

	w.trackMu.Lock()
	defer w.trackMu.Unlock()

	w.untrack(ctx, id)

	return w.conn.store.Del(ctx,
		w.conn.Key("worker", id, "started"),
		w.conn.Key("stat", "failed", id),
		w.conn.Key("stat", "processed", id),
	)
}

// Exit ends the worker. With force it terminates the process immediately;
// otherwise the in-flight job is allowed to finish and the process
// terminates at the next poll-loop entry.
func (w *Worker) Exit(ctx context.Context, force bool) {
	w.mu.Lock()
	w.shutdown = true
	w.mu.Unlock()

	w.End(ctx)

	if force {
		w.env.Exit(0)
	}
}

// resolveQueues snapshots the registered queue set for the wildcard case.
// There is no dynamic re-discovery afterward.
func (w *Worker) resolveQueues(ctx context.Context) {
	names, err := w.conn.store.Members(ctx, w.conn.Key("queues"))
	if err != nil {
		w.logger.Error("queue resolution failed", "error", err)
		w.events.Error(w, nil, err)
		names = nil
	}
	sort.Strings(names)
	w.setQueues(ctx, names)
}

// setQueues finalizes the rotation and identity, opening the ready gate.
// If a start was requested while resolving, the poll loop begins now.
func (w *Worker) setQueues(ctx context.Context, queues []string) {
	w.mu.Lock()
	w.queues = queues
	w.identity = fmt.Sprintf("%s:%d:%s", w.name, w.env.Pid(), strings.Join(queues, ","))
	w.ready = true
	pending := w.running
	w.mu.Unlock()

	if pending {
		w.Start(ctx)
	}
}

// poll is the scheduling loop: one iteration is one store round-trip,
// followed by either a dispatch or a backoff pause.
func (w *Worker) poll(ctx context.Context) {
	for {
		w.mu.Lock()
		if w.shutdown {
			w.mu.Unlock()
			w.finish(ctx)
			return
		}
		if !w.running || w.ended {
			w.polling = false
			w.mu.Unlock()
			return
		}
		queue := w.rotateLocked()
		w.mu.Unlock()

		if queue == "" {
			// Empty rotation; nothing to poll.
			if !w.pause(ctx) {
				return
			}
			continue
		}

		w.events.Poll(w, queue)

		payload, err := w.conn.store.Pop(ctx, w.conn.Key("queue", queue))
		switch {
		case err != nil:
			// A store hiccup is treated like an empty queue: back off
			// and try again, never escalate.
			w.logger.Error("poll failed", "queue", queue, "error", err)
			w.events.Error(w, nil, err)
			if !w.pause(ctx) {
				return
			}
		case payload == nil:
			if !w.pause(ctx) {
				return
			}
		default:
			j, derr := w.conn.serializer.Deserialize(payload, queue)
			if derr != nil {
				w.logger.Error("discarding malformed payload", "queue", queue, "error", derr)
				w.events.Error(w, nil, derr)
				continue
			}
			w.work(ctx, j)
		}
	}
}

// rotateLocked moves the head queue to the tail and returns it. Callers
// hold w.mu.
func (w *Worker) rotateLocked() string {
	if len(w.queues) == 0 {
		return ""
	}
	head := w.queues[0]
	w.queues = append(w.queues[1:], head)
	return head
}

// pause sleeps out the backoff and re-registers the worker, guarding
// against the identity having been pruned while idle. It reports whether
// the loop should resume; after End it stays stopped.
func (w *Worker) pause(ctx context.Context) bool {
	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		w.stopPolling()
		return false
	case <-timer.C:
	}

	w.mu.Lock()
	if w.ended && !w.shutdown {
		w.polling = false
		w.mu.Unlock()
		return false
	}
	if w.shutdown {
		// Let the loop entry run the shutdown path.
		w.mu.Unlock()
		return true
	}
	w.running = true
	w.mu.Unlock()

	w.track(ctx)
	return true
}

// work dispatches one job: emit the started event, look up the callback,
// run it, and route the outcome to succeed or fail. Nothing here may stop
// the worker; all failures are absorbed into records and counters.
func (w *Worker) work(ctx context.Context, j *job.Job) {
	w.events.JobStarted(w, j)
	w.env.SetProcessTitle(fmt.Sprintf("resque: processing %s since %d", j.Queue(), time.Now().Unix()))

	fn, ok := w.callbacks.Get(j.Class())
	if !ok {
		w.fail(ctx, j, fmt.Errorf("Missing Job: %s", j.Class()), nil)
		return
	}

	result, backtrace, err := w.perform(fn, j)
	if err != nil {
		w.fail(ctx, j, err, backtrace)
		return
	}
	w.succeed(ctx, j, result)
}

// perform runs the callback with panic recovery. A panicking callback is
// recorded as a failure with its stack, not allowed to kill the worker.
func (w *Worker) perform(fn registry.JobFunc, j *job.Job) (result interface{}, backtrace []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			backtrace = stackLines()
		}
	}()

	result, err = fn(j.Queue(), j.Args()...)
	return result, backtrace, err
}

// succeed increments the processed counters and emits the success event.
func (w *Worker) succeed(ctx context.Context, j *job.Job, result interface{}) {
	id := w.Identity()

	if _, err := w.conn.store.Increment(ctx, w.conn.Key("stat", "processed")); err != nil {
		w.logger.Error("failed to increment processed", "error", err)
	}
	if _, err := w.conn.store.Increment(ctx, w.conn.Key("stat", "processed", id)); err != nil {
		w.logger.Error("failed to increment worker processed", "error", err)
	}

	w.logger.Debug("job succeeded", "class", j.Class(), "queue", j.Queue())
	w.events.Success(w, j, result)
}

// fail increments the failed counters, appends a failure record to the
// durable failed list, and emits the error event. Failed jobs are never
// re-enqueued automatically.
func (w *Worker) fail(ctx context.Context, j *job.Job, jobErr error, backtrace []string) {
	id := w.Identity()

	if _, err := w.conn.store.Increment(ctx, w.conn.Key("stat", "failed")); err != nil {
		w.logger.Error("failed to increment failed", "error", err)
	}
	if _, err := w.conn.store.Increment(ctx, w.conn.Key("stat", "failed", id)); err != nil {
		w.logger.Error("failed to increment worker failed", "error", err)
	}

	failure := job.NewFailure(id, j, jobErr, backtrace)
	if data, err := json.Marshal(failure); err != nil {
		w.logger.Error("failed to marshal failure record", "error", err)
	} else if err := w.conn.store.Push(ctx, w.conn.Key("failed"), data); err != nil {
		w.logger.Error("failed to store failure record", "error", err)
	}

	w.logger.Error("job failed", "class", j.Class(), "queue", j.Queue(), "error", jobErr)
	w.events.Error(w, j, jobErr)
}

// track adds this worker's identity to the registration set and marks it
// running. A no-op once the worker has ended.
func (w *Worker) track(ctx context.Context) {
	w.trackMu.Lock()
	defer w.trackMu.Unlock()

	w.mu.Lock()
	if w.ended {
		w.mu.Unlock()
		return
	}
	w.running = true
	id := w.identity
	w.mu.Unlock()

	if id == "" {
		return
	}
	if err := w.conn.store.AddToSet(ctx, w.conn.Key("workers"), id); err != nil {
		w.logger.Error("failed to track worker", "worker", id, "error", err)
	}
}

// untrack removes a worker identity from the registration set.
func (w *Worker) untrack(ctx context.Context, id string) {
	if err := w.conn.store.RemoveFromSet(ctx, w.conn.Key("workers"), id); err != nil {
		w.logger.Error("failed to untrack worker", "worker", id, "error", err)
	}
}

// init registers the worker and persists its start timestamp. Runs once,
// on the first successful Start.
func (w *Worker) init(ctx context.Context) {
	w.track(ctx)

	key := w.conn.Key("worker", w.Identity(), "started")
	if err := w.conn.store.Set(ctx, key, time.Now().Format(time.RFC3339)); err != nil {
		w.logger.Error("failed to set started timestamp", "error", err)
	}
}

// finish runs the shutdown path at a poll-loop entry: end, then terminate
// the process.
func (w *Worker) finish(ctx context.Context) {
	w.stopPolling()
	w.End(ctx)
	w.logger.Info("worker exiting", "worker", w.Identity())
	w.env.Exit(0)
}

func (w *Worker) stopPolling() {
	w.mu.Lock()
	w.polling = false
	w.mu.Unlock()
}

// stackLines returns the current goroutine's stack split into lines for
// failure records.
func stackLines() []string {
	var lines []string
	for _, line := range strings.Split(string(debug.Stack()), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func splitQueues(queues string) []string {
	var names []string
	for _, name := range strings.Split(queues, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
