package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"admissions-rag-be/pkg/persistence"

	"github.com/redis/go-redis/v9"
)

const (
	historyKeyPrefix = "chat:history:"
	historyMaxLen    = 100
	historyTTL       = 2 * time.Hour
)

// Store mirrors recent conversation turns into Redis lists for fast reads.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Record(ctx context.Context, turn persistence.Turn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	key := historyKeyPrefix + turn.ConversationId
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -historyMaxLen, -1)
	pipe.Expire(ctx, key, historyTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// History returns the mirrored turns of a conversation, oldest first.
func (s *Store) History(ctx context.Context, conversationId string, limit int) ([]persistence.Turn, error) {
	if limit <= 0 || limit > historyMaxLen {
		limit = historyMaxLen
	}

	key := historyKeyPrefix + conversationId
	raw, err := s.client.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		return nil, err
	}

	turns := make([]persistence.Turn, 0, len(raw))
	for _, item := range raw {
		var turn persistence.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
