package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"admissions-rag-be/pkg/chat"
	"admissions-rag-be/pkg/llm"
	"admissions-rag-be/pkg/persistence"
	"admissions-rag-be/pkg/rag/analyzer"
	"admissions-rag-be/pkg/rag/ood"
	"admissions-rag-be/pkg/rag/prompt"
	"admissions-rag-be/pkg/retrieval"
)

// Pipeline states, in order of progression.
const (
	StateReceived        = "RECEIVED"
	StateContextLoaded   = "CONTEXT_LOADED"
	StateAnalyzed        = "ANALYZED"
	StateRetrieved       = "RETRIEVED"
	StateOODShortCircuit = "OOD_SHORT_CIRCUIT"
	StatePrompted        = "PROMPTED"
	StateStreaming       = "STREAMING"
	StateCompleted       = "COMPLETED"
	StateFailed          = "FAILED"
)

const (
	// ApologyResponse is the fixed answer emitted on any internal failure.
	ApologyResponse = "Xin lỗi, tôi đang gặp sự cố kỹ thuật. Vui lòng thử lại sau."

	DefaultTopK             = 5
	DefaultStreamDelay      = 50 * time.Millisecond
	DefaultRetrievalTimeout = 10 * time.Second

	enhanceHistoryDepth  = 6
	enhanceContentLength = 100
)

// Delta is a single streamed chunk of the assistant's answer.
type Delta struct {
	Delta          string `json:"delta"`
	ConversationId string `json:"conversation_id"`
}

// DeltaFunc receives streamed chunks. Returning an error aborts the stream.
type DeltaFunc func(delta Delta) error

// Result summarizes one fully processed chat turn.
type Result struct {
	ConversationId    string
	State             string
	Analysis          analyzer.Analysis
	Documents         []retrieval.Document
	Answer            string
	TokenCount        int
	RetrievalDuration time.Duration
	OOD               bool
	OODReason         string
	Err               error
}

// Logger is the subset of structured logging the orchestrator needs.
type Logger interface {
	Debug(module string, message string, details map[string]interface{})
	Warn(module string, message string, details map[string]interface{})
	Error(module string, message string, details map[string]interface{})
}

type Option func(*Orchestrator)

func WithTopK(topK int) Option {
	return func(o *Orchestrator) {
		if topK > 0 {
			o.topK = topK
		}
	}
}

func WithStreamDelay(delay time.Duration) Option {
	return func(o *Orchestrator) {
		if delay >= 0 {
			o.streamDelay = delay
		}
	}
}

func WithRetrievalTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		if timeout > 0 {
			o.retrievalTimeout = timeout
		}
	}
}

func WithLogger(logger Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithEnqueuer(enqueuer persistence.Enqueuer) Option {
	return func(o *Orchestrator) {
		o.enqueuer = enqueuer
	}
}

// Orchestrator drives a question through context resolution, analysis,
// retrieval, the out-of-domain gate, prompt assembly and answer streaming.
type Orchestrator struct {
	sessions  *chat.Registry
	contexts  *chat.Cache
	analyzer  *analyzer.Analyzer
	gate      *ood.Gate
	assembler *prompt.Assembler
	searcher  retrieval.Searcher
	provider  llm.LLMProvider
	enqueuer  persistence.Enqueuer
	logger    Logger

	topK             int
	streamDelay      time.Duration
	retrievalTimeout time.Duration
	now              func() time.Time
}

func New(
	sessions *chat.Registry,
	contexts *chat.Cache,
	qa *analyzer.Analyzer,
	gate *ood.Gate,
	assembler *prompt.Assembler,
	searcher retrieval.Searcher,
	provider llm.LLMProvider,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		sessions:    sessions,
		contexts:    contexts,
		analyzer:    qa,
		gate:        gate,
		assembler:   assembler,
		searcher:    searcher,
		provider:    provider,
		topK:             DefaultTopK,
		streamDelay:      DefaultStreamDelay,
		retrievalTimeout: DefaultRetrievalTimeout,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SendMessage processes one user question and streams the answer through
// onDelta. It never panics outward: any internal failure degrades to the
// fixed apology answer.
func (o *Orchestrator) SendMessage(ctx context.Context, userKey string, explicitConversationId string, question string, onDelta DeltaFunc) (result Result) {
	result.State = StateReceived

	conversationId := o.sessions.Resolve(userKey, explicitConversationId)
	result.ConversationId = conversationId

	var (
		cctx     *chat.Context
		recorded bool
	)

	defer func() {
		if r := recover(); r != nil {
			o.logError("orchestrator", "panic while processing message", map[string]interface{}{
				"conversation_id": conversationId,
				"panic":           fmt.Sprint(r),
			})
			if cctx == nil {
				cctx = o.contexts.GetOrCreate(conversationId)
			}
			if !recorded {
				o.enqueueTurn(conversationId, cctx.Append(chat.RoleUser, question))
			}
			result = o.fail(cctx, conversationId, onDelta, result, fmt.Errorf("panic: %v", r))
		}
	}()

	// The question is recorded before anything that can fail, so an aborted
	// request still leaves it in the conversation.
	cctx = o.contexts.GetOrCreate(conversationId)
	userMsg := cctx.Append(chat.RoleUser, question)
	recorded = true
	o.enqueueTurn(conversationId, userMsg)
	history := cctx.Recent(0)
	result.State = StateContextLoaded

	result.Analysis = o.analyzer.Analyze(question, history)
	result.State = StateAnalyzed
	o.logDebug("orchestrator", "query analyzed", map[string]interface{}{
		"conversation_id": conversationId,
		"type":            result.Analysis.Type,
		"intent":          result.Analysis.Intent,
		"complexity":      result.Analysis.Complexity,
	})

	query := question
	if result.Analysis.RequiresContext {
		query = enhanceQuery(question, history)
	}

	// A stalled retrieval backend must not hang the request; on deadline the
	// gate sees zero documents like any other retrieval failure.
	searchCtx, cancel := context.WithTimeout(ctx, o.retrievalTimeout)
	retrievalStart := o.now()
	docs, err := o.searcher.Search(searchCtx, query, o.topK)
	result.RetrievalDuration = o.now().Sub(retrievalStart)
	cancel()
	if err != nil {
		o.logWarn("orchestrator", "retrieval failed, continuing without documents", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           err.Error(),
		})
		docs = nil
	}
	result.Documents = docs
	result.State = StateRetrieved

	if !o.isFollowUp(result.Analysis) {
		verdict := o.gate.Evaluate(question, docs)
		if verdict.IsOOD {
			result.OOD = true
			result.OODReason = verdict.Reason
			result.State = StateOODShortCircuit
			o.logDebug("orchestrator", "question deflected as out of domain", map[string]interface{}{
				"conversation_id": conversationId,
				"reason":          verdict.Reason,
			})
			return o.finish(cctx, conversationId, o.gate.Fallback(), onDelta, result)
		}
	}

	messages := o.assembler.Build(question, docs, history, result.Analysis)
	result.State = StatePrompted

	result.State = StateStreaming
	var answer strings.Builder
	streamErr := o.provider.ChatStream(ctx, messages, func(token string) error {
		if token == "" {
			return nil
		}
		answer.WriteString(token)
		result.TokenCount++
		if err := onDelta(Delta{Delta: token, ConversationId: conversationId}); err != nil {
			return err
		}
		if o.streamDelay > 0 {
			time.Sleep(o.streamDelay)
		}
		return nil
	})
	if streamErr != nil {
		o.logError("orchestrator", "answer streaming failed", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           streamErr.Error(),
		})
		return o.fail(cctx, conversationId, onDelta, result, streamErr)
	}

	return o.finish(cctx, conversationId, answer.String(), onDelta, result)
}

// finish records the assistant's answer; the user's turn is already in the
// context. For the out-of-domain path the answer is streamed here as a single
// delta since no model call produced tokens.
func (o *Orchestrator) finish(cctx *chat.Context, conversationId string, answer string, onDelta DeltaFunc, result Result) Result {
	if result.OOD {
		if err := onDelta(Delta{Delta: answer, ConversationId: conversationId}); err != nil {
			return o.fail(cctx, conversationId, onDelta, result, err)
		}
	}

	result.Answer = answer
	o.enqueueTurn(conversationId, cctx.Append(chat.RoleAssistant, answer))
	result.State = StateCompleted
	return result
}

// fail emits the single terminal apology delta and records the apology as the
// assistant's answer.
func (o *Orchestrator) fail(cctx *chat.Context, conversationId string, onDelta DeltaFunc, result Result, cause error) Result {
	result.Err = cause
	result.Answer = ApologyResponse
	result.State = StateFailed

	func() {
		defer func() { _ = recover() }()
		_ = onDelta(Delta{Delta: ApologyResponse, ConversationId: conversationId})
	}()

	o.enqueueTurn(conversationId, cctx.Append(chat.RoleAssistant, ApologyResponse))
	return result
}

func (o *Orchestrator) enqueueTurn(conversationId string, msg chat.Message) {
	if o.enqueuer == nil {
		return
	}
	turn := persistence.Turn{
		ConversationId: conversationId,
		Role:           string(msg.Role),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
	if err := o.enqueuer.Enqueue(turn); err != nil {
		o.logWarn("orchestrator", "failed to enqueue turn for recording", map[string]interface{}{
			"conversation_id": conversationId,
			"role":            turn.Role,
			"error":           err.Error(),
		})
	}
}

func (o *Orchestrator) isFollowUp(a analyzer.Analysis) bool {
	return a.ContextType == analyzer.ContextFollowUp || a.Intent == analyzer.IntentFollowUp
}

// enhanceQuery prefixes the question with a digest of the recent exchange so
// retrieval can resolve pronouns and elliptical follow-ups.
func enhanceQuery(question string, history []chat.Message) string {
	if len(history) == 0 {
		return question
	}

	recent := history
	if len(recent) > enhanceHistoryDepth {
		recent = recent[len(recent)-enhanceHistoryDepth:]
	}

	var lines []string
	for _, msg := range recent {
		speaker := "Tư vấn viên"
		if msg.Role == chat.RoleUser {
			speaker = "Người dùng"
		}
		lines = append(lines, fmt.Sprintf("%s: %s...", speaker, truncateRunes(msg.Content, enhanceContentLength)))
	}

	return fmt.Sprintf(`
Ngữ cảnh cuộc trò chuyện gần đây:
%s

Câu hỏi hiện tại: %s

Hãy trả lời câu hỏi hiện tại với sự hiểu biết về ngữ cảnh cuộc trò chuyện trước đó.
`, strings.Join(lines, "\n"), question)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func (o *Orchestrator) logDebug(module, message string, details map[string]interface{}) {
	if o.logger != nil {
		o.logger.Debug(module, message, details)
	}
}

func (o *Orchestrator) logWarn(module, message string, details map[string]interface{}) {
	if o.logger != nil {
		o.logger.Warn(module, message, details)
	}
}

func (o *Orchestrator) logError(module, message string, details map[string]interface{}) {
	if o.logger != nil {
		o.logger.Error(module, message, details)
	}
}
