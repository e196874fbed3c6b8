package service

import (
	"context"

	"admissions-rag-be/internal/dto"
	"admissions-rag-be/internal/metrics"
	"admissions-rag-be/internal/pkg/logger"
	"admissions-rag-be/pkg/chat"
	"admissions-rag-be/pkg/events"
	pktNats "admissions-rag-be/pkg/nats"
	"admissions-rag-be/pkg/rag/orchestrator"
)

type IChatService interface {
	Stream(ctx context.Context, req *dto.ChatRequest, onDelta func(dto.ChatDelta) error) dto.ChatCompletion
	SessionStatus() dto.SessionStatusResponse
	ContextStatus() dto.ContextStatusResponse
	ClearSession(ctx context.Context, userKey string) dto.ClearSessionResponse
	Sweep() (sessions int, contexts int)
}

type chatService struct {
	pipeline       *orchestrator.Orchestrator
	sessions       *chat.Registry
	contexts       *chat.Cache
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewChatService(
	pipeline *orchestrator.Orchestrator,
	sessions *chat.Registry,
	contexts *chat.Cache,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		pipeline:       pipeline,
		sessions:       sessions,
		contexts:       contexts,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *chatService) Stream(ctx context.Context, req *dto.ChatRequest, onDelta func(dto.ChatDelta) error) dto.ChatCompletion {
	result := s.pipeline.SendMessage(ctx, req.UserEmail, req.ConversationId, req.Message, func(d orchestrator.Delta) error {
		return onDelta(dto.ChatDelta{
			Delta:          d.Delta,
			ConversationId: d.ConversationId,
		})
	})

	metrics.ChatRequestsTotal.WithLabelValues(result.State).Inc()
	metrics.QuestionsByType.WithLabelValues(result.Analysis.Type).Inc()
	metrics.StreamTokensTotal.Add(float64(result.TokenCount))
	metrics.RetrievalDuration.Observe(result.RetrievalDuration.Seconds())
	if result.OOD {
		metrics.OODDeflectionsTotal.Inc()
	}
	metrics.ActiveConversations.Set(float64(s.contexts.Stats().TotalContexts))

	if result.Err != nil {
		s.logger.Error("chat", "chat turn failed", map[string]interface{}{
			"conversation_id": result.ConversationId,
			"error":           result.Err.Error(),
		})
	}

	return dto.ChatCompletion{
		ConversationId: result.ConversationId,
		Answer:         result.Answer,
		State:          result.State,
		TokenCount:     result.TokenCount,
		OOD:            result.OOD,
	}
}

func (s *chatService) SessionStatus() dto.SessionStatusResponse {
	stats := s.sessions.Stats()
	res := dto.SessionStatusResponse{
		TotalSessions: stats.TotalSessions,
		Sessions:      make(map[string]dto.SessionDetails, len(stats.Sessions)),
	}
	for userKey, info := range stats.Sessions {
		res.Sessions[userKey] = dto.SessionDetails{
			ConversationId: info.ConversationId,
			LastActivity:   info.LastActivity,
			IdleMinutes:    info.IdleMinutes,
		}
	}
	return res
}

func (s *chatService) ContextStatus() dto.ContextStatusResponse {
	stats := s.contexts.Stats()
	res := dto.ContextStatusResponse{
		TotalContexts: stats.TotalContexts,
		Conversations: make(map[string]dto.ContextDetails, len(stats.Conversations)),
	}
	for conversationId, info := range stats.Conversations {
		res.Conversations[conversationId] = dto.ContextDetails{
			TotalMessages:     info.TotalMessages,
			UserMessages:      info.UserMessages,
			AssistantMessages: info.AssistantMessages,
			OldestMessage:     info.OldestMessage,
			NewestMessage:     info.NewestMessage,
		}
	}
	return res
}

func (s *chatService) ClearSession(ctx context.Context, userKey string) dto.ClearSessionResponse {
	res := dto.ClearSessionResponse{UserKey: userKey}

	if info, ok := s.sessions.Stats().Sessions[userKey]; ok {
		res.ConversationId = info.ConversationId
		s.contexts.Remove(info.ConversationId)
	}
	s.sessions.Clear(userKey)

	if s.eventPublisher != nil {
		evt := events.NewSessionCleared(userKey, res.ConversationId)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("chat", "failed to publish session cleared event", map[string]interface{}{
				"user_key": userKey,
				"error":    err.Error(),
			})
		}
	}

	return res
}

// Sweep drops expired sessions and idle contexts. The container runs it on a
// ticker.
func (s *chatService) Sweep() (int, int) {
	expired := s.sessions.SweepExpired()
	idle := s.contexts.SweepIdle()
	if expired > 0 || idle > 0 {
		s.logger.Info("chat", "swept stale chat state", map[string]interface{}{
			"expired_sessions": expired,
			"idle_contexts":    idle,
		})
	}
	metrics.ActiveConversations.Set(float64(s.contexts.Stats().TotalContexts))
	return expired, idle
}
