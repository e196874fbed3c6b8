package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"admissions-rag-be/pkg/persistence"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type stubRecorder struct {
	turns []persistence.Turn
	err   error
}

func (r *stubRecorder) Record(ctx context.Context, turn persistence.Turn) error {
	if r.err != nil {
		return r.err
	}
	r.turns = append(r.turns, turn)
	return nil
}

type hangingRecorder struct{}

func (hangingRecorder) Record(ctx context.Context, turn persistence.Turn) error {
	<-ctx.Done()
	return ctx.Err()
}

func newTestRecorder(store, mirror persistence.Recorder) *recorderService {
	return &recorderService{
		store:         store,
		mirror:        mirror,
		logger:        noopLogger{},
		recordTimeout: 20 * time.Millisecond,
	}
}

func turnMessage(t *testing.T) *message.Message {
	t.Helper()
	payload, err := json.Marshal(persistence.Turn{
		ConversationId: "hoi-thoai-1",
		Role:           "user",
		Content:        "học phí bao nhiêu",
	})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func TestProcessMessagePersistsAndAcks(t *testing.T) {
	store := &stubRecorder{}
	rs := newTestRecorder(store, nil)

	msg := turnMessage(t)
	rs.processMessage(context.Background(), msg)

	require.Len(t, store.turns, 1)
	assert.Equal(t, "hoi-thoai-1", store.turns[0].ConversationId)
	select {
	case <-msg.Acked():
	default:
		t.Fatal("expected the message to be acked")
	}
}

func TestProcessMessageHungStoreTimesOutAndNacks(t *testing.T) {
	rs := newTestRecorder(hangingRecorder{}, nil)
	msg := turnMessage(t)

	done := make(chan struct{})
	go func() {
		rs.processMessage(context.Background(), msg)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("a hung store blocked the consumer past its write deadline")
	}
	select {
	case <-msg.Nacked():
	default:
		t.Fatal("expected the message to be nacked for redelivery")
	}
}

func TestProcessMessageHungMirrorStillAcks(t *testing.T) {
	store := &stubRecorder{}
	rs := newTestRecorder(store, hangingRecorder{})
	msg := turnMessage(t)

	done := make(chan struct{})
	go func() {
		rs.processMessage(context.Background(), msg)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("a hung mirror blocked the consumer past its write deadline")
	}
	require.Len(t, store.turns, 1)
	select {
	case <-msg.Acked():
	default:
		t.Fatal("the durable write succeeded, the message must be acked")
	}
}

func TestProcessMessageAcksMalformedPayload(t *testing.T) {
	store := &stubRecorder{}
	rs := newTestRecorder(store, nil)

	msg := message.NewMessage(watermill.NewUUID(), []byte("not-json"))
	rs.processMessage(context.Background(), msg)

	assert.Empty(t, store.turns)
	select {
	case <-msg.Acked():
	default:
		t.Fatal("invalid payloads are acked to stop redelivery")
	}
}
