package resque

import (
	"context"
	"os"
	"sync"

	"github.com/aaronvb/coffee-resque/job"
	"github.com/aaronvb/coffee-resque/store"
	"github.com/aaronvb/coffee-resque/store/memory"
)

// fakeEnv implements hostenv.Env without touching the real process.
type fakeEnv struct {
	mu       sync.Mutex
	pid      int
	hostname string
	titles   []string
	exits    []int
	sigChans []chan<- os.Signal
	sigs     []os.Signal
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{pid: 4242, hostname: "testhost"}
}

func (f *fakeEnv) Pid() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pid
}

func (f *fakeEnv) Hostname() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hostname
}

func (f *fakeEnv) SetProcessTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
}

func (f *fakeEnv) Notify(c chan<- os.Signal, sigs ...os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sigChans = append(f.sigChans, c)
	f.sigs = append(f.sigs, sigs...)
}

func (f *fakeEnv) Exit(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exits = append(f.exits, code)
}

func (f *fakeEnv) ExitCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.exits)
}

func (f *fakeEnv) Titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.titles...)
}

func (f *fakeEnv) SignalChan() chan<- os.Signal {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sigChans) == 0 {
		return nil
	}
	return f.sigChans[0]
}

// fakePids implements hostenv.ProcessEnumerator with a fixed pid list.
type fakePids struct {
	pids []int
	err  error
}

func (f fakePids) Pids(ctx context.Context) ([]int, error) {
	return f.pids, f.err
}

// eventRecord captures one Success or Error observation.
type eventRecord struct {
	Job    *job.Job
	Result interface{}
	Err    error
}

// recordingEvents captures all worker events for assertions.
type recordingEvents struct {
	mu        sync.Mutex
	polls     []string
	started   []*job.Job
	successes []eventRecord
	errors    []eventRecord
}

func newRecordingEvents() *recordingEvents {
	return &recordingEvents{}
}

func (r *recordingEvents) Poll(w *Worker, queue string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls = append(r.polls, queue)
}

func (r *recordingEvents) JobStarted(w *Worker, j *job.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, j)
}

func (r *recordingEvents) Success(w *Worker, j *job.Job, result interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, eventRecord{Job: j, Result: result})
}

func (r *recordingEvents) Error(w *Worker, j *job.Job, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, eventRecord{Job: j, Err: err})
}

func (r *recordingEvents) Polls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.polls...)
}

func (r *recordingEvents) Started() []*job.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*job.Job(nil), r.started...)
}

func (r *recordingEvents) Successes() []eventRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]eventRecord(nil), r.successes...)
}

func (r *recordingEvents) Errors() []eventRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]eventRecord(nil), r.errors...)
}

// gatedStore wraps a store and blocks Members calls until released, to
// exercise the ready gate deterministically.
type gatedStore struct {
	store.Store
	release chan struct{}
}

func newGatedStore(inner store.Store) *gatedStore {
	return &gatedStore{Store: inner, release: make(chan struct{})}
}

func (g *gatedStore) Members(ctx context.Context, key string) ([]string, error) {
	<-g.release
	return g.Store.Members(ctx, key)
}

// flakyStore fails every Pop with a fixed error, to exercise the
// store-error backoff path.
type flakyStore struct {
	store.Store
	popErr error
}

func newFlakyStore(err error) *flakyStore {
	return &flakyStore{Store: memory.NewStore(), popErr: err}
}

func (f *flakyStore) Pop(ctx context.Context, key string) ([]byte, error) {
	return nil, f.popErr
}
