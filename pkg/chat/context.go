package chat

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	DefaultMaxContextLength     = 20
	DefaultContextWindowMinutes = 30
)

// Context holds the bounded in-memory message window for one conversation.
// The buffer retains up to 2x the read window (time and count) so a burst of
// traffic does not immediately evict messages still useful for reads.
type Context struct {
	conversationId string
	maxLength      int
	window         time.Duration

	mu       sync.Mutex
	messages []Message

	now func() time.Time
}

// ContextStats is a read-only snapshot for observability.
type ContextStats struct {
	ConversationId    string     `json:"conversation_id"`
	TotalMessages     int        `json:"total_messages"`
	UserMessages      int        `json:"user_messages"`
	AssistantMessages int        `json:"assistant_messages"`
	OldestMessage     *time.Time `json:"oldest_message,omitempty"`
	NewestMessage     *time.Time `json:"newest_message,omitempty"`
}

func NewContext(conversationId string, maxLength int, window time.Duration) *Context {
	if maxLength <= 0 {
		maxLength = DefaultMaxContextLength
	}
	if window <= 0 {
		window = DefaultContextWindowMinutes * time.Minute
	}
	return &Context{
		conversationId: conversationId,
		maxLength:      maxLength,
		window:         window,
		now:            time.Now,
	}
}

func (c *Context) ConversationId() string {
	return c.conversationId
}

// Append adds a message and trims the buffer. It never fails; durable
// persistence is a separate best-effort concern and never gates the append.
func (c *Context) Append(role Role, content string) Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := Message{
		Role:           role,
		Content:        content,
		CreatedAt:      c.now(),
		ConversationId: c.conversationId,
	}
	c.messages = append(c.messages, msg)
	c.trimLocked()
	return msg
}

// trimLocked drops messages older than twice the read window, then enforces
// the 2x count ceiling by dropping the oldest excess.
func (c *Context) trimLocked() {
	cutoff := c.now().Add(-2 * c.window)
	kept := c.messages[:0]
	for _, msg := range c.messages {
		if msg.CreatedAt.After(cutoff) {
			kept = append(kept, msg)
		}
	}
	c.messages = kept

	if max := c.maxLength * 2; len(c.messages) > max {
		c.messages = append([]Message(nil), c.messages[len(c.messages)-max:]...)
	}
}

// Recent returns the messages inside the read window, newest-biased. A
// non-positive limit means the configured max length. Returns an empty slice
// when nothing qualifies.
func (c *Context) Recent(limit int) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limit <= 0 {
		limit = c.maxLength
	}

	cutoff := c.now().Add(-c.window)
	inWindow := make([]Message, 0, len(c.messages))
	for _, msg := range c.messages {
		if msg.CreatedAt.After(cutoff) {
			inWindow = append(inWindow, msg)
		}
	}

	if len(inWindow) > limit {
		inWindow = inWindow[len(inWindow)-limit:]
	}
	return inWindow
}

// Summary produces a short human-readable digest of the conversation.
func (c *Context) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.messages) == 0 {
		return "Chưa có cuộc trò chuyện nào."
	}

	var userQuestions []string
	for _, msg := range c.messages {
		if msg.Role == RoleUser {
			userQuestions = append(userQuestions, msg.Content)
		}
	}
	if len(userQuestions) == 0 {
		return "Chưa có câu hỏi nào từ người dùng."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cuộc trò chuyện có %d tin nhắn\n", len(c.messages))
	fmt.Fprintf(&b, "Người dùng đã hỏi %d câu hỏi", len(userQuestions))

	recent := userQuestions
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	b.WriteString("\nCác chủ đề gần đây:")
	for i, question := range recent {
		if runes := []rune(question); len(runes) > 50 {
			question = string(runes[:50])
		}
		fmt.Fprintf(&b, "\n%d. %s...", i+1, question)
	}
	return b.String()
}

// Clear empties the message buffer.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

func (c *Context) Stats() ContextStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := ContextStats{
		ConversationId: c.conversationId,
		TotalMessages:  len(c.messages),
	}
	for _, msg := range c.messages {
		switch msg.Role {
		case RoleUser:
			stats.UserMessages++
		case RoleAssistant:
			stats.AssistantMessages++
		}
	}
	if len(c.messages) > 0 {
		oldest := c.messages[0].CreatedAt
		newest := c.messages[len(c.messages)-1].CreatedAt
		stats.OldestMessage = &oldest
		stats.NewestMessage = &newest
	}
	return stats
}

// newestAt reports the timestamp of the last message, false when empty.
func (c *Context) newestAt() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return time.Time{}, false
	}
	return c.messages[len(c.messages)-1].CreatedAt, true
}
