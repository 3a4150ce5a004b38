package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the NutriScope server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Jobs     JobsConfig
	Contract ContractConfig
	API      APIConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

// DatabaseConfig configures the primary job store. URL may be empty: the
// server then runs on the in-process store only, trading durability for
// availability.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the cache and the asynq queue. URL may be empty:
// jobs are then executed inline instead of being queued.
type RedisConfig struct {
	URL string
}

type AIConfig struct {
	Provider          string
	CompletionTimeout time.Duration
	OpenAI            OpenAIConfig
	OpenRouter        OpenRouterConfig
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type JobsConfig struct {
	Concurrency int
	// InlineFallback runs a job in-process when it cannot be enqueued,
	// instead of leaving it queued until a worker picks it up.
	InlineFallback bool
}

type ContractConfig struct {
	// MaxDropBytes bounds how much trailing text the dangling-line repair
	// heuristic may discard before the engine prefers a full fallback.
	MaxDropBytes int
}

type APIConfig struct {
	RateLimitPerMinute int
}

var validProviders = map[string]bool{
	"openai":     true,
	"openrouter": true,
	"mock":       true,
}

// Load reads configuration from environment variables and returns a validated
// Config. A .env file in the working directory is loaded first if present.
// Returns an error with a descriptive message if any required value is
// missing or invalid.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("NUTRISCOPE_PORT", 8080),
			Env:  envString("NUTRISCOPE_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		AI: AIConfig{
			Provider:          envString("AI_PROVIDER", "mock"),
			CompletionTimeout: envDurationSecs("AI_COMPLETION_TIMEOUT_SECS", 60*time.Second),
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4"),
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			},
			OpenRouter: OpenRouterConfig{
				APIKey:  os.Getenv("OPENROUTER_API_KEY"),
				Model:   envString("OPENROUTER_MODEL", "anthropic/claude-3-haiku"),
				BaseURL: envString("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			},
		},
		Jobs: JobsConfig{
			Concurrency:    envInt("JOBS_CONCURRENCY", 4),
			InlineFallback: envBool("JOBS_INLINE_FALLBACK", true),
		},
		Contract: ContractConfig{
			MaxDropBytes: envInt("CONTRACT_MAX_DROP_BYTES", 256),
		},
		API: APIConfig{
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 10),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, openrouter, mock; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "openrouter" && c.AI.OpenRouter.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required when AI_PROVIDER is openrouter")
	}
	if c.Jobs.Concurrency < 1 {
		return fmt.Errorf("JOBS_CONCURRENCY must be at least 1, got %d", c.Jobs.Concurrency)
	}
	if c.Contract.MaxDropBytes < 0 {
		return fmt.Errorf("CONTRACT_MAX_DROP_BYTES must not be negative, got %d", c.Contract.MaxDropBytes)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
