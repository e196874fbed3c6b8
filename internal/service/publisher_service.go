package service

import (
	"context"
	"encoding/json"

	"admissions-rag-be/pkg/persistence"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.pubSub.Publish(p.topicName, msg)
}

// TurnEnqueuer adapts the publisher to the orchestrator's enqueue contract.
type TurnEnqueuer struct {
	publisher IPublisherService
}

func NewTurnEnqueuer(publisher IPublisherService) *TurnEnqueuer {
	return &TurnEnqueuer{publisher: publisher}
}

func (e *TurnEnqueuer) Enqueue(turn persistence.Turn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	return e.publisher.Publish(context.Background(), payload)
}
