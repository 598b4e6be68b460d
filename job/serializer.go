package job

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/aaronvb/coffee-resque/errors"
	"github.com/google/uuid"
)

// Serializer converts jobs to and from the Resque JSON wire format.
type Serializer struct {
	useNumber bool
}

// NewSerializer creates a new serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Serialize converts a payload to JSON bytes.
func (s *Serializer) Serialize(p Payload) ([]byte, error) {
	if p.Args == nil {
		p.Args = []interface{}{}
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.NewSerializationError(s.Format(), err)
	}

	return data, nil
}

// Deserialize converts JSON bytes popped from the given queue into a job.
// The store does not carry an ID or enqueue time, so both are assigned here.
func (s *Serializer) Deserialize(data []byte, queue string) (*Job, error) {
	var payload Payload

	decoder := json.NewDecoder(bytes.NewReader(data))
	if s.useNumber {
		decoder.UseNumber()
	}

	if err := decoder.Decode(&payload); err != nil {
		return nil, errors.NewSerializationError(s.Format(), err)
	}

	return &Job{
		Metadata: Metadata{
			ID:         uuid.NewString(),
			Queue:      queue,
			EnqueuedAt: time.Now(),
		},
		Payload: payload,
	}, nil
}

// Format returns the serialization format name.
func (s *Serializer) Format() string {
	return "json"
}

// UseNumber returns whether numbers decode as json.Number.
func (s *Serializer) UseNumber() bool {
	return s.useNumber
}

// SetUseNumber sets whether numbers decode as json.Number instead of float64.
func (s *Serializer) SetUseNumber(useNumber bool) {
	s.useNumber = useNumber
}
