package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(clock *fakeClock, maxLength int, window time.Duration) *Context {
	cctx := NewContext("conv-1", maxLength, window)
	cctx.now = clock.Now
	return cctx
}

func TestContextTrimByCount(t *testing.T) {
	clock := newFakeClock()
	cctx := newTestContext(clock, 20, 30*time.Minute)

	for i := 0; i < 50; i++ {
		cctx.Append(RoleUser, fmt.Sprintf("câu hỏi %d", i))
	}

	stats := cctx.Stats()
	assert.Equal(t, 40, stats.TotalMessages)
}

func TestContextTrimByAge(t *testing.T) {
	clock := newFakeClock()
	cctx := newTestContext(clock, 20, 30*time.Minute)

	cctx.Append(RoleUser, "cũ")
	clock.Advance(61 * time.Minute) // beyond the 2x retention window
	cctx.Append(RoleUser, "mới")

	stats := cctx.Stats()
	assert.Equal(t, 1, stats.TotalMessages)
}

func TestRecentHonorsWindow(t *testing.T) {
	clock := newFakeClock()
	cctx := newTestContext(clock, 20, 30*time.Minute)

	cctx.Append(RoleUser, "ngoài cửa sổ")
	clock.Advance(31 * time.Minute)
	cctx.Append(RoleUser, "trong cửa sổ")

	recent := cctx.Recent(0)
	require.Len(t, recent, 1)
	assert.Equal(t, "trong cửa sổ", recent[0].Content)
}

func TestRecentCapDominatesWhenWindowDoesNotPrune(t *testing.T) {
	clock := newFakeClock()
	cctx := newTestContext(clock, 20, 30*time.Minute)

	for i := 0; i < 25; i++ {
		cctx.Append(RoleUser, fmt.Sprintf("tin nhắn %d", i))
	}

	recent := cctx.Recent(100)
	// 25 appends leave the buffer intact (below the 2x ceiling); the large
	// limit keeps everything inside the window.
	assert.Len(t, recent, 25)

	recent = cctx.Recent(0)
	require.Len(t, recent, 20)
	assert.Equal(t, "tin nhắn 24", recent[len(recent)-1].Content)
}

func TestRecentEmptyWithoutMessages(t *testing.T) {
	cctx := NewContext("conv-1", 20, 30*time.Minute)
	assert.Empty(t, cctx.Recent(0))
}

func TestAppendOrderIsCreationOrder(t *testing.T) {
	clock := newFakeClock()
	cctx := newTestContext(clock, 20, 30*time.Minute)

	cctx.Append(RoleUser, "ngành điều dưỡng")
	clock.Advance(time.Second)
	cctx.Append(RoleAssistant, "thông tin ngành")
	clock.Advance(time.Second)
	cctx.Append(RoleUser, "học phí sao?")

	recent := cctx.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, RoleUser, recent[0].Role)
	assert.Equal(t, RoleAssistant, recent[1].Role)
	assert.Equal(t, "học phí sao?", recent[2].Content)
}

func TestSummary(t *testing.T) {
	clock := newFakeClock()
	cctx := newTestContext(clock, 20, 30*time.Minute)

	assert.Equal(t, "Chưa có cuộc trò chuyện nào.", cctx.Summary())

	cctx.Append(RoleAssistant, "xin chào")
	assert.Equal(t, "Chưa có câu hỏi nào từ người dùng.", cctx.Summary())

	cctx.Append(RoleUser, "ngành điều dưỡng học mấy năm?")
	summary := cctx.Summary()
	assert.Contains(t, summary, "Cuộc trò chuyện có 2 tin nhắn")
	assert.Contains(t, summary, "ngành điều dưỡng học mấy năm?")
}

func TestClear(t *testing.T) {
	cctx := NewContext("conv-1", 20, 30*time.Minute)
	cctx.Append(RoleUser, "xin chào")
	cctx.Clear()

	assert.Equal(t, 0, cctx.Stats().TotalMessages)
	assert.Empty(t, cctx.Recent(0))
}

func TestStatsCountsRoles(t *testing.T) {
	cctx := NewContext("conv-1", 20, 30*time.Minute)
	cctx.Append(RoleUser, "a")
	cctx.Append(RoleAssistant, "b")
	cctx.Append(RoleUser, "c")

	stats := cctx.Stats()
	assert.Equal(t, 3, stats.TotalMessages)
	assert.Equal(t, 2, stats.UserMessages)
	assert.Equal(t, 1, stats.AssistantMessages)
	require.NotNil(t, stats.OldestMessage)
	require.NotNil(t, stats.NewestMessage)
}
