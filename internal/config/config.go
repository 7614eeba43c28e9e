package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Ai          AIConfig
	Retrieval   RetrievalConfig
	Scraper     ScraperConfig
	Discord     DiscordConfig
	Guard       GuardConfig
	Session     SessionConfig
	Specialists SpecialistConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	IngestTopic        string
	IngestPoisonTopic  string
	IngestMaxRetries   int
	IngestRetryBackoff time.Duration
	InboundChatSubject string
	ServiceName        string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string
	LLMBaseURL        string
	EmbeddingProvider string // "openai" or "ollama"
	EmbeddingModel    string
	EmbeddingDims     int
	OllamaBaseURL     string
	OllamaKeepAlive   string
	OpenAIBaseURL     string
	OpenAIKey         string
	OpenAIProject     string
	OpenAIOrg         string
	RequestsPerSecond float64
	Timeout           time.Duration
	Temperature       float64
}

type RetrievalConfig struct {
	Enabled             bool
	TopK                int
	MaxTokens           int
	OverlapTokens       int
	PreserveCase        bool
	PreserveNumbers     bool
	PreservePunctuation bool
	MaxTextLength       int
	DomainTerms         []string
	TokenCounter        string // "provider" or "heuristic"
	TokenCacheSize      int
}

type ScraperConfig struct {
	Endpoint string
	Timeout  time.Duration
}

type DiscordConfig struct {
	Token         string
	TriggerPrefix string
	LogFilePath   string
}

type GuardConfig struct {
	Backend string // "memory" or "redis"
	TTL     time.Duration
}

type SessionConfig struct {
	CacheTTL     time.Duration
	HistoryLimit int
}

type SpecialistConfig struct {
	File                string
	KeywordShortCircuit bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			IngestTopic:        getEnv("DOCUMENT_INGEST_TOPIC_NAME", "DOCUMENT_INGEST"),
			IngestPoisonTopic:  getEnv("DOCUMENT_INGEST_POISON_TOPIC_NAME", "DOCUMENT_INGEST_POISON"),
			IngestMaxRetries:   getEnvAsInt("DOCUMENT_INGEST_MAX_RETRIES", 5),
			IngestRetryBackoff: getEnvAsDuration("DOCUMENT_INGEST_RETRY_BACKOFF", time.Second),
			InboundChatSubject: getEnv("INBOUND_CHAT_SUBJECT", "events.CHAT_MESSAGE_RECEIVED"),
			ServiceName:        getEnv("OTEL_SERVICE_NAME", "marketing-assistant-backend"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("OPENAI_MODEL", "gpt-4-turbo"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDims:     getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaKeepAlive:   getEnv("OLLAMA_KEEP_ALIVE", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIProject:     getEnv("OPENAI_PROJECT_ID", ""),
			OpenAIOrg:         getEnv("OPENAI_ORG_ID", ""),
			RequestsPerSecond: getEnvAsFloat("AI_REQUESTS_PER_SECOND", 5),
			Timeout:           getEnvAsDuration("AI_TIMEOUT", 120*time.Second),
			Temperature:       getEnvAsFloat("AI_TEMPERATURE", 0.7),
		},
		Retrieval: RetrievalConfig{
			Enabled:             getEnvAsBool("RETRIEVAL_ENABLED", true),
			TopK:                getEnvAsInt("RETRIEVAL_TOP_K", 5),
			MaxTokens:           getEnvAsInt("SEGMENT_MAX_TOKENS", 8000),
			OverlapTokens:       getEnvAsInt("SEGMENT_OVERLAP_TOKENS", 350),
			PreserveCase:        getEnvAsBool("NORMALIZE_PRESERVE_CASE", true),
			PreserveNumbers:     getEnvAsBool("NORMALIZE_PRESERVE_NUMBERS", true),
			PreservePunctuation: getEnvAsBool("NORMALIZE_PRESERVE_PUNCTUATION", true),
			MaxTextLength:       getEnvAsInt("MAX_TEXT_LENGTH", 1000000),
			DomainTerms:         getEnvAsList("DOMAIN_TERMS", nil),
			TokenCounter:        getEnv("TOKEN_COUNTER", "provider"),
			TokenCacheSize:      getEnvAsInt("TOKEN_CACHE_SIZE", 4096),
		},
		Scraper: ScraperConfig{
			Endpoint: getEnv("SCRAPER_ENDPOINT", ""),
			Timeout:  getEnvAsDuration("SCRAPER_TIMEOUT", 30*time.Second),
		},
		Discord: DiscordConfig{
			Token:         getEnv("DISCORD_BOT_TOKEN", ""),
			TriggerPrefix: getEnv("DISCORD_BOT_PREFIX", "thrcbot"),
			LogFilePath:   getEnv("DISCORD_LOG_FILE_PATH", "logs/discord.log"),
		},
		Guard: GuardConfig{
			Backend: getEnv("GUARD_BACKEND", "memory"),
			TTL:     getEnvAsDuration("GUARD_TTL", 60*time.Second),
		},
		Session: SessionConfig{
			CacheTTL:     getEnvAsDuration("SESSION_CACHE_TTL", time.Hour),
			HistoryLimit: getEnvAsInt("SESSION_HISTORY_LIMIT", 50),
		},
		Specialists: SpecialistConfig{
			File:                getEnv("SPECIALISTS_FILE", ""),
			KeywordShortCircuit: getEnvAsBool("ROUTER_KEYWORD_SHORTCIRCUIT", false),
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

// getEnvAsDuration accepts Go durations ("30s") or plain seconds ("30").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
