package events

import "time"

// Event type codes published on the bus.
const (
	TypeChatTurnRecorded = "CHAT_TURN_RECORDED"
	TypeSessionCleared   = "SESSION_CLEARED"
	TypeConfigReloaded   = "CONFIG_RELOADED"
)

// NewChatTurnRecorded signals that a conversation turn was durably stored.
func NewChatTurnRecorded(conversationId string, role string, contentLength int) Event {
	return BaseEvent{
		Type: TypeChatTurnRecorded,
		Data: map[string]interface{}{
			"conversation_id": conversationId,
			"role":            role,
			"content_length":  contentLength,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionCleared signals that a user's session binding was removed.
func NewSessionCleared(userKey string, conversationId string) Event {
	return BaseEvent{
		Type: TypeSessionCleared,
		Data: map[string]interface{}{
			"user_key":        userKey,
			"conversation_id": conversationId,
		},
		OccurredAt: time.Now(),
	}
}

// NewConfigReloaded signals that runtime chatbot settings were refreshed.
func NewConfigReloaded(source string) Event {
	return BaseEvent{
		Type: TypeConfigReloaded,
		Data: map[string]interface{}{
			"source": source,
		},
		OccurredAt: time.Now(),
	}
}
