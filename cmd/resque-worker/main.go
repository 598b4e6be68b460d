// Command resque-worker runs a resque worker against a Redis server, and
// offers small enqueue/stats utilities for operating a queue. Job callbacks
// cannot be loaded at runtime in Go; to process jobs, copy this shell and
// register callbacks before starting the worker.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	resque "github.com/aaronvb/coffee-resque"
)

var (
	uri       = flag.String("uri", "", "the URI of the Redis server (defaults to $REDIS_URL)")
	namespace = flag.String("namespace", resque.DefaultNamespace, "the Redis key namespace")
	queues    = flag.String("queues", resque.Wildcard, "a comma-separated list of queues, or * for all")
	interval  = flag.Float64("interval", 5.0, "sleep interval in seconds when no jobs are found")
	name      = flag.String("name", "", "the worker name (defaults to the hostname)")
	useNumber = flag.Bool("use-number", false, "decode JSON numbers as json.Number instead of float64")
	stats     = flag.Bool("stats", false, "print global statistics and exit")
	enqueue   = flag.String("enqueue", "", "enqueue a job of this class and exit; args are JSON positional arguments")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "resque-worker:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	opts := resque.DefaultOptions()
	opts.Namespace = *namespace
	opts.Timeout = time.Duration(*interval * float64(time.Second))
	opts.UseNumber = *useNumber
	if *uri != "" {
		opts.URI = *uri
	} else if env := os.Getenv("REDIS_URL"); env != "" {
		opts.URI = env
	}

	conn, err := resque.New(ctx, opts)
	if err != nil {
		return err
	}
	defer conn.End()

	switch {
	case *stats:
		return printStats(ctx, conn)
	case *enqueue != "":
		return enqueueJob(ctx, conn, *enqueue, flag.Args())
	default:
		return work(ctx, conn)
	}
}

func printStats(ctx context.Context, conn *resque.Connection) error {
	s, err := conn.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("processed: %d\nfailed: %d\nworkers: %d\n", s.Processed, s.Failed, s.Workers)

	names, err := conn.Queues(ctx)
	if err != nil {
		return err
	}
	for _, queue := range names {
		length, err := conn.QueueLength(ctx, queue)
		if err != nil {
			return err
		}
		fmt.Printf("queue %s: %d\n", queue, length)
	}
	return nil
}

func enqueueJob(ctx context.Context, conn *resque.Connection, class string, rawArgs []string) error {
	queue := *queues
	if queue == resque.Wildcard {
		return fmt.Errorf("enqueue requires an explicit -queues value")
	}

	args := make([]interface{}, len(rawArgs))
	for i, raw := range rawArgs {
		var value interface{}
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			// Bare words are taken as strings.
			value = raw
		}
		args[i] = value
	}

	return conn.Enqueue(ctx, queue, class, args...)
}

func work(ctx context.Context, conn *resque.Connection) error {
	var opts []resque.WorkerOption
	if *name != "" {
		opts = append(opts, resque.WithName(*name))
	}

	worker := conn.NewWorker(ctx, *queues, opts...)
	worker.BindSignals(ctx)
	worker.Start(ctx)

	slog.Info("worker running", "queues", *queues, "namespace", *namespace)

	// Shutdown is signal-driven; the worker exits the process itself.
	select {}
}
