package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// Topic for background turn recording on the in-process queue.
	RecordChatTurnTopic = "RECORD_CHAT_TURN"

	// Ollama Configuration
	OllamaDefaultBaseURL = "http://localhost:11434"
	OllamaDefaultModel   = "llama3.1:8b"

	GeminiDefaultModel = "gemini-1.5-flash"
)
