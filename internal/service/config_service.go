package service

import (
	"context"

	"admissions-rag-be/internal/config"
	"admissions-rag-be/internal/dto"
	"admissions-rag-be/internal/pkg/logger"
	"admissions-rag-be/pkg/events"
	pktNats "admissions-rag-be/pkg/nats"
	"admissions-rag-be/pkg/rag/prompt"
)

type IConfigService interface {
	Reload(ctx context.Context) (dto.ReloadConfigResponse, error)
	Status() dto.ConfigStatusResponse
}

// configService refreshes runtime chatbot settings from the admin backend and
// pushes persona changes into the live prompt assembler.
type configService struct {
	cfg            *config.Config
	loader         *config.RemoteLoader
	assembler      *prompt.Assembler
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewConfigService(
	cfg *config.Config,
	loader *config.RemoteLoader,
	assembler *prompt.Assembler,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConfigService {
	return &configService{
		cfg:            cfg,
		loader:         loader,
		assembler:      assembler,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *configService) Reload(ctx context.Context) (dto.ReloadConfigResponse, error) {
	remote, err := s.loader.Fetch(ctx)
	if err != nil {
		s.logger.Warn("config", "remote config fetch failed, keeping local values", map[string]interface{}{
			"error": err.Error(),
		})
		return dto.ReloadConfigResponse{Reloaded: false, Source: "local"}, err
	}

	config.Apply(s.cfg, remote)
	s.assembler.Update(config.PersonaFromRemote(remote), config.ContactFromRemote(remote))

	s.logger.Info("config", "applied remote chatbot config", map[string]interface{}{
		"bot_name": s.cfg.Chat.BotName,
		"model":    s.cfg.Ai.LLMModel,
	})

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewConfigReloaded("admin-api")); err != nil {
			s.logger.Warn("config", "failed to publish config reloaded event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return dto.ReloadConfigResponse{Reloaded: true, Source: "admin-api"}, nil
}

func (s *configService) Status() dto.ConfigStatusResponse {
	return dto.ConfigStatusResponse{
		Environment:      s.cfg.App.Environment,
		LLMProvider:      s.cfg.Ai.LLMProvider,
		LLMModel:         s.cfg.Ai.LLMModel,
		BotName:          s.cfg.Chat.BotName,
		PersonalityStyle: s.cfg.Chat.PersonalityStyle,
		OODEnabled:       s.cfg.Chat.OODEnabled,
		OODThreshold:     s.cfg.Chat.OODThreshold,
		TopK:             s.cfg.Chat.TopK,
	}
}
