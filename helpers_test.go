package resque

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aaronvb/coffee-resque/store"
	"github.com/aaronvb/coffee-resque/store/memory"
	"github.com/stretchr/testify/require"
)

const testWait = 2 * time.Second

// testSetup bundles the common dependencies for worker tests.
type testSetup struct {
	Conn   *Connection
	Store  *memory.Store
	Env    *fakeEnv
	Events *recordingEvents
}

func newTestSetup(t *testing.T) *testSetup {
	st := memory.NewStore()
	return &testSetup{
		Conn:   newTestConn(t, st),
		Store:  st,
		Env:    newFakeEnv(),
		Events: newRecordingEvents(),
	}
}

func newTestConn(t *testing.T, st store.Store) *Connection {
	t.Helper()

	conn, err := New(context.Background(), Options{
		Store:   st,
		Timeout: 10 * time.Millisecond,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return conn
}

// newWorker builds a worker on the fake environment with a short backoff.
// The enumerator reports only the fake pid as alive.
func (s *testSetup) newWorker(t *testing.T, queues string, opts ...WorkerOption) *Worker {
	t.Helper()

	base := []WorkerOption{
		WithEnv(s.Env),
		WithProcessEnumerator(fakePids{pids: []int{s.Env.Pid()}}),
		WithEvents(s.Events),
		WithTimeout(10 * time.Millisecond),
	}
	return s.Conn.NewWorker(context.Background(), queues, append(base, opts...)...)
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, testWait, time.Millisecond, msg)
}

func (s *testSetup) processed(t *testing.T) int64 {
	t.Helper()
	n, err := s.Store.GetInt(context.Background(), s.Conn.Key("stat", "processed"))
	require.NoError(t, err)
	return n
}

func (s *testSetup) failed(t *testing.T) int64 {
	t.Helper()
	n, err := s.Store.GetInt(context.Background(), s.Conn.Key("stat", "failed"))
	require.NoError(t, err)
	return n
}

func (s *testSetup) failedList(t *testing.T) int64 {
	t.Helper()
	n, err := s.Store.ListLength(context.Background(), s.Conn.Key("failed"))
	require.NoError(t, err)
	return n
}

func (s *testSetup) registered(t *testing.T) []string {
	t.Helper()
	ids, err := s.Conn.Workers(context.Background())
	require.NoError(t, err)
	return ids
}
