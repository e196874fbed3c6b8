package service

import (
	"context"
	"encoding/json"
	"time"

	"admissions-rag-be/internal/pkg/logger"
	"admissions-rag-be/pkg/events"
	pktNats "admissions-rag-be/pkg/nats"
	"admissions-rag-be/pkg/persistence"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// defaultRecordTimeout bounds each persistence write so one hung backend
// cannot stall the consumer loop.
const defaultRecordTimeout = 5 * time.Second

type IRecorderService interface {
	Consume(ctx context.Context) error
}

// recorderService drains the turn queue and persists each turn durably, with
// a best-effort Redis mirror and a bus event.
type recorderService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	store          persistence.Recorder
	mirror         persistence.Recorder
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
	recordTimeout  time.Duration
}

func NewRecorderService(
	pubSub *gochannel.GoChannel,
	topicName string,
	store persistence.Recorder,
	mirror persistence.Recorder,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IRecorderService {
	return &recorderService{
		pubSub:         pubSub,
		topicName:      topicName,
		store:          store,
		mirror:         mirror,
		eventPublisher: eventPublisher,
		logger:         log,
		recordTimeout:  defaultRecordTimeout,
	}
}

func (rs *recorderService) record(ctx context.Context, store persistence.Recorder, turn persistence.Turn) error {
	writeCtx, cancel := context.WithTimeout(ctx, rs.recordTimeout)
	defer cancel()
	return store.Record(writeCtx, turn)
}

func (rs *recorderService) Consume(ctx context.Context) error {
	messages, err := rs.pubSub.Subscribe(ctx, rs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			rs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (rs *recorderService) processMessage(ctx context.Context, msg *message.Message) {
	var turn persistence.Turn
	if err := json.Unmarshal(msg.Payload, &turn); err != nil {
		rs.logger.Error("recorder", "failed to unmarshal turn payload", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if rs.store != nil {
		if err := rs.record(ctx, rs.store, turn); err != nil {
			rs.logger.Error("recorder", "failed to store turn", map[string]interface{}{
				"conversation_id": turn.ConversationId,
				"error":           err.Error(),
			})
			msg.Nack() // Nack for retriable errors
			return
		}
	}

	// Mirror and event are best-effort: the durable write already succeeded.
	if rs.mirror != nil {
		if err := rs.record(ctx, rs.mirror, turn); err != nil {
			rs.logger.Warn("recorder", "failed to mirror turn to redis", map[string]interface{}{
				"conversation_id": turn.ConversationId,
				"error":           err.Error(),
			})
		}
	}

	if rs.eventPublisher != nil {
		evt := events.NewChatTurnRecorded(turn.ConversationId, turn.Role, len(turn.Content))
		if err := rs.eventPublisher.Publish(ctx, evt); err != nil {
			rs.logger.Warn("recorder", "failed to publish turn recorded event", map[string]interface{}{
				"conversation_id": turn.ConversationId,
				"error":           err.Error(),
			})
		}
	}

	msg.Ack()
}
