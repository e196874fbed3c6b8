package chat

import (
	"sync"
	"time"
)

const DefaultCacheTimeoutMinutes = 120

// Cache keys Context instances by conversation id and creates them on miss.
// It exclusively owns every Context it hands out; callers must not retain
// references across requests.
type Cache struct {
	maxLength int
	window    time.Duration
	idle      time.Duration

	mu       sync.Mutex
	contexts map[string]*Context

	now func() time.Time
}

// CacheStats is a read-only snapshot of the cache contents.
type CacheStats struct {
	TotalContexts int                     `json:"total_contexts"`
	Conversations map[string]ContextStats `json:"conversations"`
}

func NewCache(maxLength int, window, idle time.Duration) *Cache {
	if idle <= 0 {
		idle = DefaultCacheTimeoutMinutes * time.Minute
	}
	return &Cache{
		maxLength: maxLength,
		window:    window,
		idle:      idle,
		contexts:  make(map[string]*Context),
		now:       time.Now,
	}
}

// GetOrCreate returns the Context for the conversation, creating an empty one
// on first use. Safe for concurrent callers; the same id always resolves to
// the same instance until it is removed.
func (c *Cache) GetOrCreate(conversationId string) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cctx, ok := c.contexts[conversationId]; ok {
		return cctx
	}
	cctx := NewContext(conversationId, c.maxLength, c.window)
	cctx.now = c.now
	c.contexts[conversationId] = cctx
	return cctx
}

// Remove evicts a conversation's context. Idempotent.
func (c *Cache) Remove(conversationId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.contexts, conversationId)
}

// SweepIdle removes contexts whose newest message is older than the idle
// timeout, along with empty ones. Returns how many were evicted. Designed for
// periodic invocation; it does not schedule itself.
func (c *Cache) SweepIdle() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.idle)
	removed := 0
	for id, cctx := range c.contexts {
		newest, ok := cctx.newestAt()
		if !ok || newest.Before(cutoff) {
			delete(c.contexts, id)
			removed++
		}
	}
	return removed
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{
		TotalContexts: len(c.contexts),
		Conversations: make(map[string]ContextStats, len(c.contexts)),
	}
	for id, cctx := range c.contexts {
		stats.Conversations[id] = cctx.Stats()
	}
	return stats
}
