package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultSessionTimeoutMinutes = 60

type session struct {
	conversationId string
	lastActivity   time.Time
}

// Registry binds a user-facing identity (email or guest id) to the currently
// active conversation id, with inactivity-based expiry. At most one active
// conversation per user key.
type Registry struct {
	timeout time.Duration

	mu       sync.Mutex
	sessions map[string]*session

	now func() time.Time
}

// SessionInfo is a read-only view of one session.
type SessionInfo struct {
	ConversationId string    `json:"conversation_id"`
	LastActivity   time.Time `json:"last_activity"`
	IdleMinutes    float64   `json:"minutes_since_last_activity"`
}

// RegistryStats is a read-only snapshot for the status endpoint.
type RegistryStats struct {
	TotalSessions int                    `json:"total_sessions"`
	Sessions      map[string]SessionInfo `json:"sessions"`
}

func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = DefaultSessionTimeoutMinutes * time.Minute
	}
	return &Registry{
		timeout:  timeout,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Resolve returns the conversation id for the user. A caller-supplied id
// always wins and is bound verbatim, no existence check. Otherwise the live
// session id is reused, or a fresh uuid is minted once the session expired.
func (r *Registry) Resolve(userKey, explicitConversationId string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if explicitConversationId != "" {
		r.bindLocked(userKey, explicitConversationId)
		return explicitConversationId
	}

	if s, ok := r.sessions[userKey]; ok {
		if r.now().Sub(s.lastActivity) < r.timeout {
			r.bindLocked(userKey, s.conversationId)
			return s.conversationId
		}
	}

	conversationId := uuid.NewString()
	r.bindLocked(userKey, conversationId)
	return conversationId
}

func (r *Registry) bindLocked(userKey, conversationId string) {
	r.sessions[userKey] = &session{
		conversationId: conversationId,
		lastActivity:   r.now(),
	}
}

// Clear removes the user's session. Idempotent.
func (r *Registry) Clear(userKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userKey)
}

// SweepExpired removes sessions past the inactivity timeout and returns how
// many were dropped. Designed for periodic invocation; not self-scheduling.
func (r *Registry) SweepExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for userKey, s := range r.sessions {
		if now.Sub(s.lastActivity) >= r.timeout {
			delete(r.sessions, userKey)
			removed++
		}
	}
	return removed
}

func (r *Registry) Stats() RegistryStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	stats := RegistryStats{
		TotalSessions: len(r.sessions),
		Sessions:      make(map[string]SessionInfo, len(r.sessions)),
	}
	for userKey, s := range r.sessions {
		stats.Sessions[userKey] = SessionInfo{
			ConversationId: s.conversationId,
			LastActivity:   s.lastActivity,
			IdleMinutes:    now.Sub(s.lastActivity).Minutes(),
		}
	}
	return stats
}
