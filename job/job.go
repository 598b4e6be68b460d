// Package job defines the job payload types and the wire format used on the
// store. The wire format is the Resque payload: {"class": "...", "args": [...]}.
package job

import (
	"time"

	"github.com/google/uuid"
)

// Payload is the serialized portion of a job.
type Payload struct {
	Class string        `json:"class"`
	Args  []interface{} `json:"args"`
}

// Metadata carries job information that never touches the wire.
type Metadata struct {
	ID         string
	Queue      string
	EnqueuedAt time.Time
}

// Job is a dequeued unit of work.
type Job struct {
	Metadata Metadata
	Payload  Payload
}

// New creates a job bound for the given queue. Args may be nil; the wire
// format always carries an array.
func New(queue, class string, args []interface{}) *Job {
	if args == nil {
		args = []interface{}{}
	}
	return &Job{
		Metadata: Metadata{
			ID:         uuid.NewString(),
			Queue:      queue,
			EnqueuedAt: time.Now(),
		},
		Payload: Payload{
			Class: class,
			Args:  args,
		},
	}
}

// Class returns the job's function name.
func (j *Job) Class() string {
	return j.Payload.Class
}

// Args returns the job's arguments.
func (j *Job) Args() []interface{} {
	return j.Payload.Args
}

// Queue returns the queue the job was dequeued from.
func (j *Job) Queue() string {
	return j.Metadata.Queue
}

// Failure is the durable record appended to the failed list when a job
// errors. Field names match the Resque failure format.
type Failure struct {
	Worker    string   `json:"worker"`
	Queue     string   `json:"queue"`
	Payload   Payload  `json:"payload"`
	Exception string   `json:"exception"`
	Error     string   `json:"error"`
	Backtrace []string `json:"backtrace"`
	FailedAt  string   `json:"failed_at"`
}

// NewFailure builds a failure record for a job that errored on the given
// worker. Backtrace may be nil when no stack was captured.
func NewFailure(workerID string, j *Job, err error, backtrace []string) Failure {
	if backtrace == nil {
		backtrace = []string{}
	}
	return Failure{
		Worker:    workerID,
		Queue:     j.Queue(),
		Payload:   j.Payload,
		Exception: "Error",
		Error:     err.Error(),
		Backtrace: backtrace,
		FailedAt:  time.Now().Format(time.RFC3339),
	}
}
