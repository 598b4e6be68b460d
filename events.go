package resque

import "github.com/aaronvb/coffee-resque/job"

// Events observes a worker's lifecycle. Implementations must be safe for
// concurrent use and must not block; the worker calls them inline from its
// poll loop.
type Events interface {
	// Poll fires before each dequeue attempt with the queue being checked.
	Poll(w *Worker, queue string)

	// JobStarted fires after a job is dequeued, before its callback runs.
	JobStarted(w *Worker, j *job.Job)

	// Success fires after a job's callback returns without error.
	Success(w *Worker, j *job.Job, result interface{})

	// Error fires on job failures and store-level errors. The job is nil
	// when the error did not involve one.
	Error(w *Worker, j *job.Job, err error)
}

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) Poll(*Worker, string)                   {}
func (NopEvents) JobStarted(*Worker, *job.Job)           {}
func (NopEvents) Success(*Worker, *job.Job, interface{}) {}
func (NopEvents) Error(*Worker, *job.Job, error)         {}
