package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// OpenRouter
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	LLMModel          string
	LLMMaxTokens      int
	LLMTemperature    float64
	LLMTimeoutSec     int

	// Pipeline budgets
	MessageTimeout   time.Duration
	SummarizeTimeout time.Duration
	ToneTimeout      time.Duration
	MaxBodyChars     int
	ChunkMaxChars    int
	MapConcurrency   int

	// Mailbox listing
	MaxResults        int
	IncludeUpdates    bool
	IncludePromotions bool

	// OAuth - Google
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GoogleTokenFile    string

	// Redis (optional, enables the shared rate limiter window)
	RedisURL string

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// OpenRouter
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMModel:          getEnv("LLM_MODEL", "meta-llama/llama-3.1-8b-instruct"),
		LLMMaxTokens:      getEnvInt("LLM_MAX_TOKENS", 100),
		LLMTemperature:    getEnvFloat("LLM_TEMPERATURE", 0.2),
		LLMTimeoutSec:     getEnvInt("LLM_TIMEOUT_SEC", 90),

		// Pipeline budgets
		MessageTimeout:   time.Duration(getEnvInt("MESSAGE_TIMEOUT_SEC", 60)) * time.Second,
		SummarizeTimeout: time.Duration(getEnvInt("SUMMARIZE_TIMEOUT_SEC", 45)) * time.Second,
		ToneTimeout:      time.Duration(getEnvInt("TONE_TIMEOUT_SEC", 20)) * time.Second,
		MaxBodyChars:     getEnvInt("MAX_BODY_CHARS", 8000),
		ChunkMaxChars:    getEnvInt("CHUNK_MAX_CHARS", 1500),
		MapConcurrency:   getEnvInt("MAP_CONCURRENCY", 5),

		// Mailbox listing
		MaxResults:        getEnvInt("MAIL_MAX_RESULTS", 10),
		IncludeUpdates:    getEnvBool("MAIL_INCLUDE_UPDATES", true),
		IncludePromotions: getEnvBool("MAIL_INCLUDE_PROMOTIONS", false),

		// OAuth - Google
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		GoogleTokenFile:    getEnv("GOOGLE_TOKEN_FILE", "token.json"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasMailbox reports whether Gmail credentials are configured.
func (c *Config) HasMailbox() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
