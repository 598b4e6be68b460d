package resque

import (
	"context"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindSignals_TermExitsImmediately(t *testing.T) {
	ctx := context.Background()
	setup := newTestSetup(t)

	worker := setup.newWorker(t, "idle")
	worker.Start(ctx)
	worker.BindSignals(ctx)

	eventually(t, func() bool { return len(setup.registered(t)) == 1 }, "registration")

	c := setup.Env.SignalChan()
	require.NotNil(t, c)
	c <- syscall.SIGTERM

	eventually(t, func() bool { return setup.Env.ExitCalls() >= 1 }, "immediate exit")
	assert.Empty(t, setup.registered(t))
}

func TestBindSignals_QuitExitsAtPollBoundary(t *testing.T) {
	ctx := context.Background()
	setup := newTestSetup(t)

	worker := setup.newWorker(t, "idle")
	worker.Start(ctx)
	worker.BindSignals(ctx)

	eventually(t, func() bool { return len(setup.registered(t)) == 1 }, "registration")

	c := setup.Env.SignalChan()
	require.NotNil(t, c)
	c <- syscall.SIGQUIT

	// The poll loop observes the shutdown flag at its next entry and
	// terminates the process itself.
	eventually(t, func() bool { return setup.Env.ExitCalls() == 1 }, "exit at poll boundary")
	assert.Empty(t, setup.registered(t))
}
