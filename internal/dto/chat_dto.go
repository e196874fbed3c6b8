package dto

import "time"

type ChatRequest struct {
	Message        string `json:"message" validate:"required,min=1,max=2000"`
	UserEmail      string `json:"user_email" validate:"required,email"`
	ConversationId string `json:"conversation_id,omitempty"`
}

// ChatDelta is one NDJSON line of a streamed answer.
type ChatDelta struct {
	Delta          string `json:"delta"`
	ConversationId string `json:"conversation_id"`
	Done           bool   `json:"done,omitempty"`
	Error          string `json:"error,omitempty"`
}

type ChatCompletion struct {
	ConversationId string `json:"conversation_id"`
	Answer         string `json:"answer"`
	State          string `json:"state"`
	TokenCount     int    `json:"token_count"`
	OOD            bool   `json:"ood"`
}

type SessionStatusResponse struct {
	TotalSessions int                       `json:"total_sessions"`
	Sessions      map[string]SessionDetails `json:"sessions"`
}

type SessionDetails struct {
	ConversationId string    `json:"conversation_id"`
	LastActivity   time.Time `json:"last_activity"`
	IdleMinutes    float64   `json:"idle_minutes"`
}

type ContextStatusResponse struct {
	TotalContexts int                       `json:"total_contexts"`
	Conversations map[string]ContextDetails `json:"conversations"`
}

type ContextDetails struct {
	TotalMessages     int        `json:"total_messages"`
	UserMessages      int        `json:"user_messages"`
	AssistantMessages int        `json:"assistant_messages"`
	OldestMessage     *time.Time `json:"oldest_message,omitempty"`
	NewestMessage     *time.Time `json:"newest_message,omitempty"`
}

type ClearSessionResponse struct {
	UserKey        string `json:"user_key"`
	ConversationId string `json:"conversation_id,omitempty"`
}

type ConfigStatusResponse struct {
	Environment      string  `json:"environment"`
	LLMProvider      string  `json:"llm_provider"`
	LLMModel         string  `json:"llm_model"`
	BotName          string  `json:"bot_name"`
	PersonalityStyle string  `json:"personality_style"`
	OODEnabled       bool    `json:"ood_enabled"`
	OODThreshold     float64 `json:"ood_threshold"`
	TopK             int     `json:"top_k"`
}

type ReloadConfigResponse struct {
	Reloaded bool   `json:"reloaded"`
	Source   string `json:"source"`
}
