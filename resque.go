package resque

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aaronvb/coffee-resque/job"
	"github.com/aaronvb/coffee-resque/registry"
	"github.com/aaronvb/coffee-resque/store"
	redisstore "github.com/aaronvb/coffee-resque/store/redis"
)

const (
	// DefaultNamespace is the key prefix used when none is configured.
	DefaultNamespace = "resque"

	// DefaultTimeout is the empty-queue backoff before the next poll.
	DefaultTimeout = 5 * time.Second

	// Wildcard selects all queues registered at worker startup.
	Wildcard = "*"
)

// Options holds Connection configuration.
type Options struct {
	// URI is the Redis connection URI. Ignored when Store is set.
	URI string

	// Redis carries detailed connection options. Nil means defaults.
	// Ignored when Store is set.
	Redis *redisstore.Options

	// Store is an already-connected store handle. When set, URI and
	// Redis are not used and no connection is opened.
	Store store.Store

	// Namespace is the key prefix, "resque" by default.
	Namespace string

	// Timeout is the default empty-queue backoff for workers.
	Timeout time.Duration

	// Callbacks is the default callback table for workers.
	Callbacks map[string]registry.JobFunc

	// UseNumber decodes JSON numbers as json.Number instead of float64.
	UseNumber bool

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultOptions returns default Connection options.
func DefaultOptions() Options {
	return Options{
		URI:       "redis://localhost:6379/",
		Namespace: DefaultNamespace,
		Timeout:   DefaultTimeout,
	}
}

// Stats is a snapshot of the global counters.
type Stats struct {
	Processed int64
	Failed    int64
	Workers   int64
}

// Connection owns the store handle, the namespace, and the default
// callback table, and is the factory for workers.
type Connection struct {
	store      store.Store
	namespace  string
	timeout    time.Duration
	callbacks  *registry.Registry
	serializer *job.Serializer
	logger     *slog.Logger
}

// New creates a Connection. When no store handle is supplied a Redis
// connection is opened from the URI and verified with a ping.
func New(ctx context.Context, opts Options) (*Connection, error) {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	serializer := job.NewSerializer()
	serializer.SetUseNumber(opts.UseNumber)

	st := opts.Store
	if st == nil {
		redisOpts := redisstore.DefaultOptions()
		if opts.Redis != nil {
			redisOpts = *opts.Redis
		}
		if opts.URI != "" {
			redisOpts.URI = opts.URI
		}

		rs := redisstore.NewStore(redisOpts)
		if err := rs.Connect(ctx); err != nil {
			return nil, err
		}
		st = rs
	}

	return &Connection{
		store:      st,
		namespace:  opts.Namespace,
		timeout:    opts.Timeout,
		callbacks:  registry.FromMap(opts.Callbacks),
		serializer: serializer,
		logger:     logger,
	}, nil
}

// Key joins the namespace and parts with ":".
func (c *Connection) Key(parts ...string) string {
	return strings.Join(append([]string{c.namespace}, parts...), ":")
}

// Register adds a job function to the Connection's default callback table.
func (c *Connection) Register(class string, fn registry.JobFunc) error {
	return c.callbacks.Register(class, fn)
}

// Enqueue serializes a job and appends it to the queue's list, registering
// the queue name in the global queue set. There is no retry logic; store
// errors return to the caller.
func (c *Connection) Enqueue(ctx context.Context, queue, class string, args ...interface{}) error {
	data, err := c.serializer.Serialize(job.Payload{Class: class, Args: args})
	if err != nil {
		return err
	}

	if err := c.store.AddToSet(ctx, c.Key("queues"), queue); err != nil {
		return err
	}

	return c.store.Push(ctx, c.Key("queue", queue), data)
}

// Queues returns the names of all queues ever enqueued to, sorted.
func (c *Connection) Queues(ctx context.Context) ([]string, error) {
	names, err := c.store.Members(ctx, c.Key("queues"))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// QueueLength returns the number of pending jobs on a queue.
func (c *Connection) QueueLength(ctx context.Context, queue string) (int64, error) {
	return c.store.ListLength(ctx, c.Key("queue", queue))
}

// Workers returns the identities currently in the registration set.
func (c *Connection) Workers(ctx context.Context) ([]string, error) {
	ids, err := c.store.Members(ctx, c.Key("workers"))
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// Stats returns the global processed/failed counters and the number of
// registered workers.
func (c *Connection) Stats(ctx context.Context) (Stats, error) {
	processed, err := c.store.GetInt(ctx, c.Key("stat", "processed"))
	if err != nil {
		return Stats{}, err
	}

	failed, err := c.store.GetInt(ctx, c.Key("stat", "failed"))
	if err != nil {
		return Stats{}, err
	}

	workers, err := c.store.SetSize(ctx, c.Key("workers"))
	if err != nil {
		return Stats{}, err
	}

	return Stats{Processed: processed, Failed: failed, Workers: workers}, nil
}

// End closes the store connection. No further operations on this
// Connection are valid afterward.
func (c *Connection) End() error {
	return c.store.Close()
}
