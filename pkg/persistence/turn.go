package persistence

import (
	"context"
	"time"
)

// Turn is a single recorded message of a conversation.
type Turn struct {
	ConversationId string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Recorder persists conversation turns.
type Recorder interface {
	Record(ctx context.Context, turn Turn) error
}

// Enqueuer hands turns off for background recording. Implementations must
// never block the caller on downstream storage.
type Enqueuer interface {
	Enqueue(turn Turn) error
}
