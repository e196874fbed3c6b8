package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyMergesOnlyProvidedFields(t *testing.T) {
	cfg := Load()
	cfg.Ai.LLMModel = "gemini-1.5-flash"
	cfg.Ai.Temperature = 0.2
	cfg.Chat.ContextMaxLength = 20
	cfg.Chat.StreamDelayMs = 50

	maxTokens := 4096
	delay := 25
	remote := &RemoteConfig{}
	remote.LLMConfig.DefaultModel = "gemini-1.5-pro"
	remote.LLMConfig.MaxTokens = &maxTokens
	remote.ChatConfig.StreamDelayMs = &delay
	remote.Personality.Name = "DongA Assistant"

	Apply(cfg, remote)

	assert.Equal(t, "gemini-1.5-pro", cfg.Ai.LLMModel)
	assert.Equal(t, 4096, cfg.Ai.MaxTokens)
	assert.Equal(t, 25, cfg.Chat.StreamDelayMs)
	assert.Equal(t, "DongA Assistant", cfg.Chat.BotName)

	assert.Equal(t, 0.2, cfg.Ai.Temperature, "absent fields keep local values")
	assert.Equal(t, 20, cfg.Chat.ContextMaxLength)
}

func TestApplyIgnoresNilRemote(t *testing.T) {
	cfg := Load()
	before := *cfg
	Apply(cfg, nil)
	assert.Equal(t, before.Chat, cfg.Chat)
}

func TestPersonaFromRemoteKeepsEmptyFieldsZero(t *testing.T) {
	remote := &RemoteConfig{}
	remote.Personality.Name = "Tư vấn viên"

	persona := PersonaFromRemote(remote)
	assert.Equal(t, "Tư vấn viên", persona.Name)
	assert.Empty(t, persona.Style)

	contact := ContactFromRemote(remote)
	assert.Empty(t, contact.Hotline)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("CHAT_RETRIEVAL_TOP_K", "8")
	t.Setenv("CHAT_OOD_ENABLED", "false")
	t.Setenv("CHAT_OOD_THRESHOLD", "0.25")

	cfg := Load()
	assert.Equal(t, 8, cfg.Chat.TopK)
	assert.False(t, cfg.Chat.OODEnabled)
	assert.Equal(t, 0.25, cfg.Chat.OODThreshold)
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("CHAT_RETRIEVAL_TOP_K", "not-a-number")
	cfg := Load()
	assert.Equal(t, 5, cfg.Chat.TopK)
}
