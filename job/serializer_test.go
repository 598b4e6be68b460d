package job

import (
	"encoding/json"
	"testing"

	"github.com/aaronvb/coffee-resque/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	s := NewSerializer()

	data, err := s.Serialize(Payload{Class: "add", Args: []interface{}{1, 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"class":"add","args":[1,2]}`, string(data))
}

func TestSerializeNilArgs(t *testing.T) {
	s := NewSerializer()

	data, err := s.Serialize(Payload{Class: "tick"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"class":"tick","args":[]}`, string(data))
}

func TestDeserialize(t *testing.T) {
	s := NewSerializer()

	j, err := s.Deserialize([]byte(`{"class":"add","args":[1,2]}`), "math")
	require.NoError(t, err)

	assert.Equal(t, "add", j.Class())
	assert.Equal(t, []interface{}{float64(1), float64(2)}, j.Args())
	assert.Equal(t, "math", j.Queue())
	assert.NotEmpty(t, j.Metadata.ID)
	assert.False(t, j.Metadata.EnqueuedAt.IsZero())
}

func TestDeserializeUseNumber(t *testing.T) {
	s := NewSerializer()
	s.SetUseNumber(true)
	require.True(t, s.UseNumber())

	j, err := s.Deserialize([]byte(`{"class":"add","args":[9007199254740993]}`), "math")
	require.NoError(t, err)

	require.Len(t, j.Args(), 1)
	num, ok := j.Args()[0].(json.Number)
	require.True(t, ok)
	assert.Equal(t, "9007199254740993", num.String())
}

func TestDeserializeMalformed(t *testing.T) {
	s := NewSerializer()

	_, err := s.Deserialize([]byte(`{"class":`), "math")
	require.Error(t, err)

	var serErr *errors.SerializationError
	require.ErrorAs(t, err, &serErr)
	assert.Equal(t, "json", serErr.Format)
}

func TestDeserializeAssignsDistinctIDs(t *testing.T) {
	s := NewSerializer()
	data := []byte(`{"class":"tick","args":[]}`)

	a, err := s.Deserialize(data, "math")
	require.NoError(t, err)
	b, err := s.Deserialize(data, "math")
	require.NoError(t, err)

	assert.NotEqual(t, a.Metadata.ID, b.Metadata.ID)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "json", NewSerializer().Format())
}
