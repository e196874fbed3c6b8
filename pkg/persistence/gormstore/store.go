package gormstore

import (
	"context"
	"time"

	"admissions-rag-be/pkg/persistence"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage is the durable row for a recorded conversation turn.
type ChatMessage struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId string    `gorm:"type:varchar(128);index;not null"`
	Role           string    `gorm:"type:varchar(16);not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Record(ctx context.Context, turn persistence.Turn) error {
	row := &ChatMessage{
		ConversationId: turn.ConversationId,
		Role:           turn.Role,
		Content:        turn.Content,
		CreatedAt:      turn.CreatedAt,
	}
	return s.db.WithContext(ctx).Create(row).Error
}

// History returns the most recent turns of a conversation, oldest first.
func (s *Store) History(ctx context.Context, conversationId string, limit int) ([]persistence.Turn, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []ChatMessage
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	turns := make([]persistence.Turn, len(rows))
	for i, row := range rows {
		turns[len(rows)-1-i] = persistence.Turn{
			ConversationId: row.ConversationId,
			Role:           row.Role,
			Content:        row.Content,
			CreatedAt:      row.CreatedAt,
		}
	}
	return turns, nil
}
