package chat

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn in a conversation. Messages are append-only:
// once created they are never mutated or reordered.
type Message struct {
	Role           Role
	Content        string
	CreatedAt      time.Time
	ConversationId string
}
