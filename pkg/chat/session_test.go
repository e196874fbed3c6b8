package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestRegistryReusesConversationWithinTimeout(t *testing.T) {
	clock := newFakeClock()
	registry := NewRegistry(60 * time.Minute)
	registry.now = clock.Now

	first := registry.Resolve("a@x.com", "")
	require.NotEmpty(t, first)

	clock.Advance(59 * time.Minute)
	second := registry.Resolve("a@x.com", "")
	assert.Equal(t, first, second)
}

func TestRegistryMintsNewConversationAfterTimeout(t *testing.T) {
	clock := newFakeClock()
	registry := NewRegistry(60 * time.Minute)
	registry.now = clock.Now

	first := registry.Resolve("a@x.com", "")

	clock.Advance(60 * time.Minute)
	second := registry.Resolve("a@x.com", "")
	assert.NotEqual(t, first, second)
}

func TestRegistryExplicitIdWins(t *testing.T) {
	clock := newFakeClock()
	registry := NewRegistry(60 * time.Minute)
	registry.now = clock.Now

	registry.Resolve("a@x.com", "")
	got := registry.Resolve("a@x.com", "custom-id")
	assert.Equal(t, "custom-id", got)

	// The explicit binding sticks for subsequent implicit resolves.
	clock.Advance(time.Minute)
	assert.Equal(t, "custom-id", registry.Resolve("a@x.com", ""))
}

func TestRegistryClearIsIdempotent(t *testing.T) {
	registry := NewRegistry(60 * time.Minute)

	first := registry.Resolve("a@x.com", "")
	registry.Clear("a@x.com")
	registry.Clear("a@x.com")

	second := registry.Resolve("a@x.com", "")
	assert.NotEqual(t, first, second)
}

func TestRegistrySweepExpired(t *testing.T) {
	clock := newFakeClock()
	registry := NewRegistry(60 * time.Minute)
	registry.now = clock.Now

	registry.Resolve("old@x.com", "")
	clock.Advance(61 * time.Minute)
	registry.Resolve("fresh@x.com", "")

	removed := registry.SweepExpired()
	assert.Equal(t, 1, removed)

	stats := registry.Stats()
	assert.Equal(t, 1, stats.TotalSessions)
	_, ok := stats.Sessions["fresh@x.com"]
	assert.True(t, ok)
}

func TestRegistryIsolatesUsers(t *testing.T) {
	registry := NewRegistry(60 * time.Minute)

	a := registry.Resolve("a@x.com", "")
	b := registry.Resolve("b@x.com", "")
	assert.NotEqual(t, a, b)
}
