package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/flowmap-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("key-1"),
		Value:     []byte(`{"dataset_id":"ds-1"}`),
		Topic:     "raw-county-flows",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "publisher", Value: []byte("census")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("key-1"), raw.Key)
	assert.JSONEq(t, `{"dataset_id":"ds-1"}`, string(raw.Value))
	assert.Equal(t, "raw-county-flows", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "census", raw.Headers["publisher"])
	assert.Nil(t, raw.Commit, "commit is attached by the reader, not the mapper")
}

func TestMapOutputToMessage(t *testing.T) {
	event := domain.OutputEvent{
		Key:   []byte("ds-1"),
		Value: []byte(`{"dataset_id":"ds-1","max_net":100}`),
		Headers: map[string]string{
			"processed_at": "2026-08-30T12:00:00Z",
			"counties":     "2",
			"dataset_id":   "ds-1",
		},
	}

	msg := mapOutputToMessage(event)

	assert.Equal(t, []byte("ds-1"), msg.Key)
	assert.Equal(t, event.Value, msg.Value)

	// Sorted header order keeps the message bytes deterministic.
	assert.Equal(t, []kafkago.Header{
		{Key: "counties", Value: []byte("2")},
		{Key: "dataset_id", Value: []byte("ds-1")},
		{Key: "processed_at", Value: []byte("2026-08-30T12:00:00Z")},
	}, msg.Headers)
}
