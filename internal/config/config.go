package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Retrieval RetrievalConfig
	Agent     AgentConfig
	Cache     CacheConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	EmbedTopic         string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI        string
	Tavily        string
	TavilyBaseURL string
}

type AIConfig struct {
	EmbeddingProvider    string // "ollama" or "openai"
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	OpenAIBaseURL        string
	OpenAIEmbeddingModel string
	LLMProvider          string // "ollama", "openai"
	LLMModel             string // e.g. "llama3", "gpt-4o-mini"
	Temperature          float64
	MaxTokens            int
	RequestTimeout       time.Duration
	MaxRetries           int
	BaseDelay            time.Duration
	MaxDelay             time.Duration
}

type RetrievalConfig struct {
	TopK           int
	ScoreThreshold float64
}

type AgentConfig struct {
	MaxIterations int
	TokenBudget   int
}

type CacheConfig struct {
	AnswerTTL       time.Duration
	EmbedMaxEntries int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			EmbedTopic:         getEnv("EMBED_MINUTE_TOPIC_NAME", "EMBED_MINUTE_CONTENT"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:        getEnv("OPENAI_API_KEY", ""),
			Tavily:        getEnv("TAVILY_API_KEY", ""),
			TavilyBaseURL: getEnv("TAVILY_BASE_URL", "https://api.tavily.com"),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			LLMProvider:          getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:             getEnv("LLM_MODEL", "llama3"),
			Temperature:          getEnvAsFloat("GENERATION_TEMPERATURE", 0.3),
			MaxTokens:            getEnvAsInt("GENERATION_MAX_TOKENS", 2000),
			RequestTimeout:       time.Duration(getEnvAsInt("GENERATION_TIMEOUT_SECONDS", 120)) * time.Second,
			MaxRetries:           getEnvAsInt("GENERATION_MAX_RETRIES", 3),
			BaseDelay:            time.Duration(getEnvAsInt("GENERATION_BASE_DELAY_MS", 1000)) * time.Millisecond,
			MaxDelay:             time.Duration(getEnvAsInt("GENERATION_MAX_DELAY_MS", 30000)) * time.Millisecond,
		},
		Retrieval: RetrievalConfig{
			TopK:           getEnvAsInt("RETRIEVAL_TOP_K", 5),
			ScoreThreshold: getEnvAsFloat("RETRIEVAL_SCORE_THRESHOLD", 0.35),
		},
		Agent: AgentConfig{
			MaxIterations: getEnvAsInt("AGENT_MAX_ITERATIONS", 3),
			TokenBudget:   getEnvAsInt("CONTEXT_TOKEN_BUDGET", 3000),
		},
		Cache: CacheConfig{
			AnswerTTL:       time.Duration(getEnvAsInt("ANSWER_CACHE_TTL_SECONDS", 300)) * time.Second,
			EmbedMaxEntries: getEnvAsInt("EMBED_CACHE_MAX_ENTRIES", 1000),
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
