package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/envmon-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("TPE001"),
		Value:     []byte(`{"id":"TPE001","aqi":85}`),
		Topic:     "raw-station-readings",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "record_kind", Value: []byte("air")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("TPE001"), raw.Key)
	assert.JSONEq(t, `{"id":"TPE001","aqi":85}`, string(raw.Value))
	assert.Equal(t, "raw-station-readings", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "air", raw.Headers["record_kind"])
	assert.Nil(t, raw.Commit)
}

func TestMapMessageToRawEvent_NoHeaders(t *testing.T) {
	raw := mapMessageToRawEvent(kafkago.Message{Value: []byte(`{}`)})
	assert.NotNil(t, raw.Headers)
	assert.Empty(t, raw.Headers)
}

func TestToMessage(t *testing.T) {
	event := domain.OutputEvent{
		Key:   []byte("WQ001"),
		Value: []byte(`{"id":"WQ001","kind":"water"}`),
		Headers: map[string]string{
			"record_kind":  "water",
			"processed_at": "2024-08-15T12:00:00Z",
		},
	}

	msg := toMessage(event)

	assert.Equal(t, []byte("WQ001"), msg.Key)
	assert.Equal(t, event.Value, msg.Value)
	assert.Equal(t, []kafkago.Header{
		{Key: "processed_at", Value: []byte("2024-08-15T12:00:00Z")},
		{Key: "record_kind", Value: []byte("water")},
	}, msg.Headers)
}
