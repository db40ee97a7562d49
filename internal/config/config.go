package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"cortex-ai-be/pkg/llm"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Chat     ChatConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "memory"
	Connection string
}

type AIConfig struct {
	LLMProvider       string // "ollama" or "gemini"
	LLMModel          string // e.g. "llama3", "gemini-2.0-flash"
	OllamaBaseURL     string
	GeminiAPIKey      string
	GenerationTimeout time.Duration
	Temperature       float64
	MaxTokens         int // 0 leaves the provider default
	RateLimitRPS      float64
	RateLimitBurst    int
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

type ChatConfig struct {
	FallbackNoteCount  int
	SuggestionLimit    int
	SuggestionCacheTTL time.Duration
	ContextViewTTL     time.Duration
	LockTTL            time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	generationTimeout := getEnvAsDuration("LLM_GENERATION_TIMEOUT", 90*time.Second)

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GenerationTimeout: generationTimeout,
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:         getEnvAsInt("LLM_MAX_TOKENS", 0),
			RateLimitRPS:      getEnvAsFloat("LLM_RATE_LIMIT_RPS", 0.5),
			RateLimitBurst:    getEnvAsInt("LLM_RATE_LIMIT_BURST", 5),
		},
		Chat: ChatConfig{
			FallbackNoteCount:  getEnvAsInt("CHAT_FALLBACK_NOTE_COUNT", 5),
			SuggestionLimit:    getEnvAsInt("CHAT_SUGGESTION_LIMIT", 8),
			SuggestionCacheTTL: getEnvAsDuration("CHAT_SUGGESTION_CACHE_TTL", 15*time.Second),
			ContextViewTTL:     getEnvAsDuration("CHAT_CONTEXT_VIEW_TTL", 5*time.Minute),
			// Must outlive a generation; the send lock is held across it.
			LockTTL: getEnvAsDuration("CHAT_LOCK_TTL", generationTimeout+30*time.Second),
		},
		Otel: OtelConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "cortex-ai-backend"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}
}

// GenerationOptions turns the sampling settings into provider options.
func (c AIConfig) GenerationOptions() []llm.Option {
	options := []llm.Option{llm.WithTemperature(c.Temperature)}
	if c.MaxTokens > 0 {
		options = append(options, llm.WithMaxTokens(c.MaxTokens))
	}
	return options
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

// getEnvAsDuration accepts Go durations ("15s") or plain seconds ("15").
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
