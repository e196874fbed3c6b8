package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"admissions-rag-be/pkg/chat"
	"admissions-rag-be/pkg/llm"
	"admissions-rag-be/pkg/persistence"
	"admissions-rag-be/pkg/rag/analyzer"
	"admissions-rag-be/pkg/rag/ood"
	"admissions-rag-be/pkg/rag/prompt"
	"admissions-rag-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	docs      []retrieval.Document
	err       error
	lastQuery string
	calls     int
}

func (s *fakeSearcher) Search(ctx context.Context, query string, topK int) ([]retrieval.Document, error) {
	s.calls++
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return s.docs, nil
}

type fakeLLM struct {
	tokens       []string
	failAfter    int
	failErr      error
	calls        int
	lastMessages []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return strings.Join(f.tokens, ""), nil
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, fn llm.StreamFunc, options ...llm.Option) error {
	f.calls++
	f.lastMessages = history
	for i, token := range f.tokens {
		if f.failErr != nil && i == f.failAfter {
			return f.failErr
		}
		if err := fn(token); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return strings.Join(f.tokens, ""), nil
}

type inspectingSearcher struct {
	inspect func()
}

func (s *inspectingSearcher) Search(ctx context.Context, query string, topK int) ([]retrieval.Document, error) {
	if s.inspect != nil {
		s.inspect()
	}
	return nil, nil
}

type blockingSearcher struct{}

func (s *blockingSearcher) Search(ctx context.Context, query string, topK int) ([]retrieval.Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type panickingLLM struct{}

func (p *panickingLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	panic("model client broken")
}

func (p *panickingLLM) ChatStream(ctx context.Context, history []llm.Message, fn llm.StreamFunc, options ...llm.Option) error {
	panic("model client broken")
}

func (p *panickingLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	panic("model client broken")
}

type recordingEnqueuer struct {
	turns []persistence.Turn
	err   error
}

func (e *recordingEnqueuer) Enqueue(turn persistence.Turn) error {
	if e.err != nil {
		return e.err
	}
	e.turns = append(e.turns, turn)
	return nil
}

type collector struct {
	deltas []Delta
	err    error
}

func (c *collector) collect(d Delta) error {
	if c.err != nil {
		return c.err
	}
	c.deltas = append(c.deltas, d)
	return nil
}

func newTestOrchestrator(searcher retrieval.Searcher, provider llm.LLMProvider, opts ...Option) (*Orchestrator, *chat.Cache) {
	cache := chat.NewCache(20, 30*time.Minute, 2*time.Hour)
	base := []Option{WithStreamDelay(0)}
	o := New(
		chat.NewRegistry(time.Hour),
		cache,
		analyzer.New(),
		ood.NewGate(0.10, true),
		prompt.NewAssembler(prompt.DefaultPersona(), prompt.DefaultContact()),
		searcher,
		provider,
		append(base, opts...)...,
	)
	return o, cache
}

func TestSendMessageStreamsAnswerAndRecordsTurns(t *testing.T) {
	searcher := &fakeSearcher{docs: []retrieval.Document{
		{Content: "Học phí ngành Điều dưỡng là 22 triệu/năm", Source: "hocphi.pdf", Score: 0.88},
	}}
	provider := &fakeLLM{tokens: []string{"Học phí ", "ngành Điều dưỡng ", "là 22 triệu/năm."}}
	enqueuer := &recordingEnqueuer{}
	o, cache := newTestOrchestrator(searcher, provider, WithEnqueuer(enqueuer))

	sink := &collector{}
	question := "học phí ngành điều dưỡng bao nhiêu?"
	result := o.SendMessage(context.Background(), "sv001@donga.edu.vn", "", question, sink.collect)

	require.NoError(t, result.Err)
	assert.Equal(t, StateCompleted, result.State)
	assert.NotEmpty(t, result.ConversationId)
	assert.False(t, result.OOD)
	assert.Equal(t, 3, result.TokenCount)
	assert.Equal(t, "Học phí ngành Điều dưỡng là 22 triệu/năm.", result.Answer)

	var streamed strings.Builder
	for _, d := range sink.deltas {
		assert.Equal(t, result.ConversationId, d.ConversationId)
		streamed.WriteString(d.Delta)
	}
	assert.Equal(t, result.Answer, streamed.String())

	require.Len(t, provider.lastMessages, 4)
	assert.Equal(t, question, provider.lastMessages[3].Content)

	stats := cache.GetOrCreate(result.ConversationId).Stats()
	assert.Equal(t, 1, stats.UserMessages)
	assert.Equal(t, 1, stats.AssistantMessages)

	require.Len(t, enqueuer.turns, 2)
	assert.Equal(t, "user", enqueuer.turns[0].Role)
	assert.Equal(t, question, enqueuer.turns[0].Content)
	assert.Equal(t, "assistant", enqueuer.turns[1].Role)
	assert.Equal(t, result.Answer, enqueuer.turns[1].Content)
}

func TestSendMessageDeflectsOutOfDomainWithoutModelCall(t *testing.T) {
	searcher := &fakeSearcher{docs: nil}
	provider := &fakeLLM{tokens: []string{"không được gọi"}}
	o, cache := newTestOrchestrator(searcher, provider)

	sink := &collector{}
	result := o.SendMessage(context.Background(), "user-1", "", "thời tiết hôm nay thế nào", sink.collect)

	assert.Equal(t, StateCompleted, result.State)
	assert.True(t, result.OOD)
	assert.Equal(t, "Không tìm thấy tài liệu liên quan", result.OODReason)
	assert.Equal(t, 0, provider.calls)

	require.Len(t, sink.deltas, 1)
	assert.Equal(t, ood.DefaultFallbackResponse, sink.deltas[0].Delta)
	assert.Equal(t, ood.DefaultFallbackResponse, result.Answer)

	stats := cache.GetOrCreate(result.ConversationId).Stats()
	assert.Equal(t, 1, stats.UserMessages)
	assert.Equal(t, 1, stats.AssistantMessages)
}

func TestSendMessageMidStreamFailureEmitsSingleApology(t *testing.T) {
	searcher := &fakeSearcher{docs: []retrieval.Document{{Content: "tài liệu tuyển sinh", Score: 0.9}}}
	provider := &fakeLLM{
		tokens:    []string{"Chào ", "bạn, ", "trường"},
		failAfter: 2,
		failErr:   errors.New("upstream closed connection"),
	}
	enqueuer := &recordingEnqueuer{}
	o, cache := newTestOrchestrator(searcher, provider, WithEnqueuer(enqueuer))

	sink := &collector{}
	result := o.SendMessage(context.Background(), "user-2", "", "điểm chuẩn ngành luật là bao nhiêu", sink.collect)

	assert.Equal(t, StateFailed, result.State)
	require.Error(t, result.Err)
	assert.Equal(t, ApologyResponse, result.Answer)

	require.Len(t, sink.deltas, 3)
	assert.Equal(t, "Chào ", sink.deltas[0].Delta)
	assert.Equal(t, "bạn, ", sink.deltas[1].Delta)
	assert.Equal(t, ApologyResponse, sink.deltas[2].Delta)

	messages := cache.GetOrCreate(result.ConversationId).Recent(0)
	require.Len(t, messages, 2)
	assert.Equal(t, chat.RoleAssistant, messages[1].Role)
	assert.Equal(t, ApologyResponse, messages[1].Content)

	require.Len(t, enqueuer.turns, 2)
	assert.Equal(t, ApologyResponse, enqueuer.turns[1].Content)
}

func TestSendMessageEnhancesQueryForContextDependentQuestions(t *testing.T) {
	searcher := &fakeSearcher{docs: []retrieval.Document{{Content: "ngành công nghệ thông tin", Score: 0.8}}}
	provider := &fakeLLM{tokens: []string{"ok"}}
	o, cache := newTestOrchestrator(searcher, provider)

	first := o.SendMessage(context.Background(), "user-3", "", "ngành công nghệ thông tin học những gì", (&collector{}).collect)
	require.Equal(t, StateCompleted, first.State)

	cctx := cache.GetOrCreate(first.ConversationId)
	require.Len(t, cctx.Recent(0), 2)

	result := o.SendMessage(context.Background(), "user-3", "", "nó có dễ xin việc không", (&collector{}).collect)

	assert.Equal(t, first.ConversationId, result.ConversationId)
	assert.True(t, result.Analysis.RequiresContext)
	assert.Contains(t, searcher.lastQuery, "Ngữ cảnh cuộc trò chuyện gần đây:")
	assert.Contains(t, searcher.lastQuery, "Câu hỏi hiện tại: nó có dễ xin việc không")
	assert.Contains(t, searcher.lastQuery, "Người dùng: ngành công nghệ thông tin học những gì")
}

func TestSendMessageSkipsGateForFollowUps(t *testing.T) {
	searcher := &fakeSearcher{docs: nil}
	provider := &fakeLLM{tokens: []string{"vẫn trả lời"}}
	o, _ := newTestOrchestrator(searcher, provider)

	sink := &collector{}
	result := o.SendMessage(context.Background(), "user-4", "", "còn cái đó thì sao nữa", sink.collect)

	assert.Equal(t, analyzer.ContextFollowUp, result.Analysis.ContextType)
	assert.False(t, result.OOD)
	assert.Equal(t, 1, provider.calls, "follow-ups bypass the deflection gate")
	assert.Equal(t, StateCompleted, result.State)
}

func TestSendMessageSurvivesRetrievalFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("dial tcp: connection refused")}
	provider := &fakeLLM{tokens: []string{"câu trả lời"}}
	o, _ := newTestOrchestrator(searcher, provider)

	sink := &collector{}
	result := o.SendMessage(context.Background(), "user-5", "", "trường có những ngành nào", sink.collect)

	// Education keyword keeps the gate open despite the empty retrieval.
	assert.Equal(t, StateCompleted, result.State)
	assert.False(t, result.OOD)
	assert.Empty(t, result.Documents)
	assert.Equal(t, "câu trả lời", result.Answer)
}

func TestSendMessageReusesConversationAcrossTurns(t *testing.T) {
	searcher := &fakeSearcher{docs: []retrieval.Document{{Content: "doc", Score: 0.7}}}
	provider := &fakeLLM{tokens: []string{"trả lời"}}
	o, cache := newTestOrchestrator(searcher, provider)

	first := o.SendMessage(context.Background(), "sv002", "", "học phí ngành luật bao nhiêu", (&collector{}).collect)
	second := o.SendMessage(context.Background(), "sv002", "", "trường có học bổng không", (&collector{}).collect)

	assert.Equal(t, first.ConversationId, second.ConversationId)

	stats := cache.GetOrCreate(first.ConversationId).Stats()
	assert.Equal(t, 4, stats.TotalMessages)
}

func TestSendMessageRecordsQuestionBeforeRetrieval(t *testing.T) {
	searcher := &inspectingSearcher{}
	provider := &fakeLLM{tokens: []string{"ok"}}
	o, cache := newTestOrchestrator(searcher, provider)

	question := "trường có ngành điều dưỡng không"
	var seen []chat.Message
	searcher.inspect = func() {
		seen = cache.GetOrCreate("phien-kiem-tra").Recent(0)
	}

	result := o.SendMessage(context.Background(), "sv010", "phien-kiem-tra", question, (&collector{}).collect)

	require.Equal(t, StateCompleted, result.State)
	require.Len(t, seen, 1)
	assert.Equal(t, chat.RoleUser, seen[0].Role)
	assert.Equal(t, question, seen[0].Content)
}

func TestSendMessageCrashStillLeavesQuestionRecorded(t *testing.T) {
	searcher := &fakeSearcher{docs: []retrieval.Document{{Content: "doc", Score: 0.9}}}
	o, cache := newTestOrchestrator(searcher, &panickingLLM{})

	question := "điểm chuẩn ngành luật là bao nhiêu"
	result := o.SendMessage(context.Background(), "sv012", "", question, (&collector{}).collect)

	assert.Equal(t, StateFailed, result.State)
	require.Error(t, result.Err)

	messages := cache.GetOrCreate(result.ConversationId).Recent(0)
	require.Len(t, messages, 2)
	assert.Equal(t, chat.RoleUser, messages[0].Role)
	assert.Equal(t, question, messages[0].Content)
	assert.Equal(t, ApologyResponse, messages[1].Content)
}

func TestSendMessageRetrievalTimeoutDegradesToNoDocuments(t *testing.T) {
	provider := &fakeLLM{tokens: []string{"vẫn trả lời được"}}
	o, _ := newTestOrchestrator(&blockingSearcher{}, provider, WithRetrievalTimeout(10*time.Millisecond))

	done := make(chan Result, 1)
	go func() {
		done <- o.SendMessage(context.Background(), "sv011", "", "trường có những ngành nào", (&collector{}).collect)
	}()

	select {
	case result := <-done:
		assert.Equal(t, StateCompleted, result.State)
		assert.Empty(t, result.Documents)
		assert.False(t, result.OOD)
		assert.Equal(t, 1, provider.calls)
	case <-time.After(2 * time.Second):
		t.Fatal("retrieval kept the request blocked past its deadline")
	}
}

func TestSendMessageHonorsExplicitConversationId(t *testing.T) {
	searcher := &fakeSearcher{docs: []retrieval.Document{{Content: "doc", Score: 0.7}}}
	provider := &fakeLLM{tokens: []string{"trả lời"}}
	o, _ := newTestOrchestrator(searcher, provider)

	result := o.SendMessage(context.Background(), "sv003", "phien-co-dinh", "tuyển sinh năm nay thế nào", (&collector{}).collect)

	assert.Equal(t, "phien-co-dinh", result.ConversationId)
}
