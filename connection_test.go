package resque

import (
	"context"
	"testing"

	"github.com/aaronvb/coffee-resque/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnection_Key(t *testing.T) {
	setup := newTestSetup(t)

	assert.Equal(t, "resque:queues", setup.Conn.Key("queues"))
	assert.Equal(t, "resque:stat:processed", setup.Conn.Key("stat", "processed"))
	assert.Equal(t, "resque:queue:math", setup.Conn.Key("queue", "math"))
}

func TestConnection_CustomNamespace(t *testing.T) {
	conn, err := New(context.Background(), Options{
		Store:     memory.NewStore(),
		Namespace: "myapp",
	})
	require.NoError(t, err)

	assert.Equal(t, "myapp:queues", conn.Key("queues"))
}

func TestConnection_Enqueue(t *testing.T) {
	ctx := context.Background()
	setup := newTestSetup(t)

	require.NoError(t, setup.Conn.Enqueue(ctx, "math", "add", 1, 2))

	queues, err := setup.Conn.Queues(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"math"}, queues)

	length, err := setup.Conn.QueueLength(ctx, "math")
	require.NoError(t, err)
	assert.EqualValues(t, 1, length)

	raw, err := setup.Store.Pop(ctx, setup.Conn.Key("queue", "math"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"class":"add","args":[1,2]}`, string(raw))
}

func TestConnection_EnqueueNoArgs(t *testing.T) {
	ctx := context.Background()
	setup := newTestSetup(t)

	require.NoError(t, setup.Conn.Enqueue(ctx, "math", "tick"))

	raw, err := setup.Store.Pop(ctx, setup.Conn.Key("queue", "math"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"class":"tick","args":[]}`, string(raw))
}

func TestConnection_EnqueueDequeueRoundTrip(t *testing.T) {
	ctx := context.Background()
	setup := newTestSetup(t)

	require.NoError(t, setup.Conn.Enqueue(ctx, "math", "add", 1, 2))

	raw, err := setup.Store.Pop(ctx, setup.Conn.Key("queue", "math"))
	require.NoError(t, err)

	j, err := setup.Conn.serializer.Deserialize(raw, "math")
	require.NoError(t, err)
	assert.Equal(t, "add", j.Class())
	assert.Equal(t, []interface{}{float64(1), float64(2)}, j.Args())
	assert.Equal(t, "math", j.Queue())
}

func TestConnection_QueuesSorted(t *testing.T) {
	ctx := context.Background()
	setup := newTestSetup(t)

	for _, queue := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, setup.Conn.Enqueue(ctx, queue, "tick"))
	}

	queues, err := setup.Conn.Queues(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, queues)
}

func TestConnection_Stats(t *testing.T) {
	ctx := context.Background()
	setup := newTestSetup(t)

	stats, err := setup.Conn.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)

	_, err = setup.Store.Increment(ctx, setup.Conn.Key("stat", "processed"))
	require.NoError(t, err)
	_, err = setup.Store.Increment(ctx, setup.Conn.Key("stat", "failed"))
	require.NoError(t, err)
	require.NoError(t, setup.Store.AddToSet(ctx, setup.Conn.Key("workers"), "host:1:q"))

	stats, err = setup.Conn.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Processed: 1, Failed: 1, Workers: 1}, stats)
}

func TestConnection_Register(t *testing.T) {
	setup := newTestSetup(t)

	err := setup.Conn.Register("add", func(queue string, args ...interface{}) (interface{}, error) {
		return nil, nil
	})
	require.NoError(t, err)

	err = setup.Conn.Register("", nil)
	assert.Error(t, err)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, "redis://localhost:6379/", opts.URI)
	assert.Equal(t, "resque", opts.Namespace)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
}
