package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	AdminAPIURL        string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini    string
	RecordTurnTopic string
}

type AIConfig struct {
	EmbeddingProvider    string // "gemini" or "ollama"
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	LLMProvider          string // "ollama" or "gemini"
	LLMModel             string // e.g. "llama3", "gemini-1.5-flash"
	Temperature          float64
	MaxTokens            int
}

type ChatConfig struct {
	SessionTimeoutMinutes int
	ContextMaxLength      int
	ContextWindowMinutes  int
	CacheTimeoutMinutes   int
	TopK                  int
	StreamDelayMs         int
	OODEnabled            bool
	OODThreshold          float64
	BotName               string
	PersonalityStyle      string
	RetrievalCacheTTLMin  int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			AdminAPIURL:        getEnv("ADMIN_API_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini:    getEnv("GOOGLE_GEMINI_API_KEY", ""),
			RecordTurnTopic: getEnv("RECORD_CHAT_TURN_TOPIC_NAME", "RECORD_CHAT_TURN"),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:          getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:             getEnv("LLM_MODEL", "gemini-1.5-flash"),
			Temperature:          getEnvAsFloat("LLM_TEMPERATURE", 0.2),
			MaxTokens:            getEnvAsInt("LLM_MAX_TOKENS", 2048),
		},
		Chat: ChatConfig{
			SessionTimeoutMinutes: getEnvAsInt("CHAT_SESSION_TIMEOUT_MINUTES", 60),
			ContextMaxLength:      getEnvAsInt("CHAT_CONTEXT_MAX_LENGTH", 20),
			ContextWindowMinutes:  getEnvAsInt("CHAT_CONTEXT_WINDOW_MINUTES", 30),
			CacheTimeoutMinutes:   getEnvAsInt("CHAT_CACHE_TIMEOUT_MINUTES", 120),
			TopK:                  getEnvAsInt("CHAT_RETRIEVAL_TOP_K", 5),
			StreamDelayMs:         getEnvAsInt("CHAT_STREAM_DELAY_MS", 50),
			OODEnabled:            getEnvAsBool("CHAT_OOD_ENABLED", true),
			OODThreshold:          getEnvAsFloat("CHAT_OOD_THRESHOLD", 0.10),
			BotName:               getEnv("CHAT_BOT_NAME", "Assistant"),
			PersonalityStyle:      getEnv("CHAT_PERSONALITY_STYLE", "professional"),
			RetrievalCacheTTLMin:  getEnvAsInt("CHAT_RETRIEVAL_CACHE_TTL_MINUTES", 5),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
