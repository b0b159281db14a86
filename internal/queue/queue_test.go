package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: MsgRecorded, Body: []byte("rec-1")}))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, MsgRecorded, msg.Type)
		assert.Equal(t, "rec-1", string(msg.Body))
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: MsgRecorded, Body: []byte("abc-123")}
	got := deserialize(serialize(msg))
	assert.Equal(t, msg.Type, got.Type)
	assert.Equal(t, msg.Body, got.Body)
}

func TestDeserializeWithoutType(t *testing.T) {
	got := deserialize("bare-body")
	assert.Empty(t, got.Type)
	assert.Equal(t, "bare-body", string(got.Body))
}
