// Package resque is a Redis-backed job queue client and worker runtime,
// compatible with the Resque key layout. Producers enqueue jobs onto named
// queues; workers poll their queue set round-robin, execute the registered
// callback for each job, and record success and failure statistics.
//
// # Example
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		resque "github.com/aaronvb/coffee-resque"
//		"github.com/aaronvb/coffee-resque/registry"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		opts := resque.DefaultOptions()
//		opts.Callbacks = map[string]registry.JobFunc{
//			"add": func(queue string, args ...interface{}) (interface{}, error) {
//				return args[0].(float64) + args[1].(float64), nil
//			},
//		}
//
//		conn, err := resque.New(ctx, opts)
//		if err != nil {
//			panic(err)
//		}
//		defer conn.End()
//
//		if err := conn.Enqueue(ctx, "math", "add", 1, 2); err != nil {
//			fmt.Println("enqueue:", err)
//		}
//
//		worker := conn.NewWorker(ctx, "math")
//		worker.BindSignals(ctx)
//		worker.Start(ctx)
//
//		select {}
//	}
//
// # Type Assertions and Parameters
//
// Job callbacks receive the queue they are serving and a slice of
// interfaces decoded from JSON. Use type assertions to convert them into
// usable types; numbers decode as float64 unless UseNumber is set, in
// which case they decode as json.Number.
//
// # Worker identity and liveness
//
// Each worker registers itself in the shared workers set under the
// identity name:pid:queue1,queue2 once its queue set has resolved. On
// construction a worker prunes registrations left behind by crashed
// processes on the same host. The check is best-effort and host-local:
// it enumerates local processes only, so registrations from other hosts
// are not visible to it and must be pruned there.
package resque
