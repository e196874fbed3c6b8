package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"admissions-rag-be/pkg/rag/prompt"
)

const (
	remoteConfigPath    = "/chatbot-config/rag/config"
	remoteConfigTimeout = 10 * time.Second
)

// RemoteConfig mirrors the admin backend's chatbot configuration payload.
type RemoteConfig struct {
	LLMConfig struct {
		DefaultModel string   `json:"defaultModel"`
		MaxTokens    *int     `json:"maxTokens"`
		Temperature  *float64 `json:"temperature"`
	} `json:"llmConfig"`
	ChatConfig struct {
		MaxContextLength     *int `json:"maxContextLength"`
		ContextWindowMinutes *int `json:"contextWindowMinutes"`
		MaxResponseTokens    *int `json:"maxResponseTokens"`
		StreamDelayMs        *int `json:"streamDelayMs"`
	} `json:"chatConfig"`
	Personality struct {
		Name            string `json:"name"`
		Persona         string `json:"persona"`
		Personality     string `json:"personality"`
		CreativityLevel string `json:"creativityLevel"`
	} `json:"personality"`
	ContactInfo struct {
		Hotline string `json:"hotline"`
		Email   string `json:"email"`
		Website string `json:"website"`
		Address string `json:"address"`
	} `json:"contactInfo"`
	Environment string `json:"environment"`
	Debug       bool   `json:"debug"`
}

// RemoteLoader fetches chatbot settings from the admin backend.
type RemoteLoader struct {
	baseURL string
	client  *http.Client
}

func NewRemoteLoader(baseURL string) *RemoteLoader {
	return &RemoteLoader{
		baseURL: baseURL,
		client:  &http.Client{Timeout: remoteConfigTimeout},
	}
}

func (l *RemoteLoader) Fetch(ctx context.Context) (*RemoteConfig, error) {
	if l.baseURL == "" {
		return nil, fmt.Errorf("admin API URL is not configured")
	}

	url := l.baseURL + remoteConfigPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch remote config: unexpected status %d", resp.StatusCode)
	}

	var remote RemoteConfig
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, fmt.Errorf("decode remote config: %w", err)
	}
	return &remote, nil
}

// Apply merges the remote payload into cfg. Only fields the backend actually
// sent overwrite local values.
func Apply(cfg *Config, remote *RemoteConfig) {
	if remote == nil {
		return
	}

	if remote.LLMConfig.DefaultModel != "" {
		cfg.Ai.LLMModel = remote.LLMConfig.DefaultModel
	}
	if remote.LLMConfig.MaxTokens != nil {
		cfg.Ai.MaxTokens = *remote.LLMConfig.MaxTokens
	}
	if remote.LLMConfig.Temperature != nil {
		cfg.Ai.Temperature = *remote.LLMConfig.Temperature
	}

	if remote.ChatConfig.MaxContextLength != nil {
		cfg.Chat.ContextMaxLength = *remote.ChatConfig.MaxContextLength
	}
	if remote.ChatConfig.ContextWindowMinutes != nil {
		cfg.Chat.ContextWindowMinutes = *remote.ChatConfig.ContextWindowMinutes
	}
	if remote.ChatConfig.StreamDelayMs != nil {
		cfg.Chat.StreamDelayMs = *remote.ChatConfig.StreamDelayMs
	}

	if remote.Environment != "" {
		cfg.App.Environment = remote.Environment
	}

	if remote.Personality.Name != "" {
		cfg.Chat.BotName = remote.Personality.Name
	}
	if remote.Personality.Personality != "" {
		cfg.Chat.PersonalityStyle = remote.Personality.Personality
	}
}

// PersonaFromRemote builds the persona overrides carried by the remote
// payload. Empty fields stay zero so the assembler keeps its current values.
func PersonaFromRemote(remote *RemoteConfig) prompt.Persona {
	if remote == nil {
		return prompt.Persona{}
	}
	return prompt.Persona{
		Name:        remote.Personality.Name,
		Description: remote.Personality.Persona,
		Style:       remote.Personality.Personality,
	}
}

func ContactFromRemote(remote *RemoteConfig) prompt.Contact {
	if remote == nil {
		return prompt.Contact{}
	}
	return prompt.Contact{
		Hotline: remote.ContactInfo.Hotline,
		Email:   remote.ContactInfo.Email,
		Website: remote.ContactInfo.Website,
		Address: remote.ContactInfo.Address,
	}
}
