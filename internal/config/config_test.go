package config_test

import (
	"testing"
	"time"

	"github.com/sagarpatil/nutriscope/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so a developer's shell does not
// leak into the assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NUTRISCOPE_PORT", "NUTRISCOPE_ENV",
		"DATABASE_URL", "DATABASE_MAX_OPEN_CONNS", "DATABASE_MAX_IDLE_CONNS", "DATABASE_CONN_MAX_LIFETIME",
		"REDIS_URL",
		"AI_PROVIDER", "AI_COMPLETION_TIMEOUT_SECS",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"OPENROUTER_API_KEY", "OPENROUTER_MODEL", "OPENROUTER_BASE_URL",
		"JOBS_CONCURRENCY", "JOBS_INLINE_FALLBACK",
		"CONTRACT_MAX_DROP_BYTES",
		"RATE_LIMIT_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, "mock", cfg.AI.Provider)
	assert.Equal(t, 60*time.Second, cfg.AI.CompletionTimeout)
	assert.Equal(t, 4, cfg.Jobs.Concurrency)
	assert.True(t, cfg.Jobs.InlineFallback)
	assert.Equal(t, 256, cfg.Contract.MaxDropBytes)
	assert.Equal(t, 10, cfg.API.RateLimitPerMinute)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NUTRISCOPE_PORT", "9090")
	t.Setenv("AI_COMPLETION_TIMEOUT_SECS", "30")
	t.Setenv("JOBS_CONCURRENCY", "8")
	t.Setenv("JOBS_INLINE_FALLBACK", "false")
	t.Setenv("CONTRACT_MAX_DROP_BYTES", "512")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.AI.CompletionTimeout)
	assert.Equal(t, 8, cfg.Jobs.Concurrency)
	assert.False(t, cfg.Jobs.InlineFallback)
	assert.Equal(t, 512, cfg.Contract.MaxDropBytes)
}

func TestLoad_MalformedValuesFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("NUTRISCOPE_PORT", "not-a-number")
	t.Setenv("JOBS_INLINE_FALLBACK", "maybe")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Jobs.InlineFallback)
}

func TestLoad_InvalidProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "skynet")

	_, err := config.Load()
	assert.ErrorContains(t, err, "AI_PROVIDER")
}

func TestLoad_OpenAIRequiresKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "openai")

	_, err := config.Load()
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", cfg.AI.OpenAI.Model)
}

func TestLoad_OpenRouterRequiresKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "openrouter")

	_, err := config.Load()
	assert.ErrorContains(t, err, "OPENROUTER_API_KEY")
}

func TestLoad_RejectsZeroConcurrency(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOBS_CONCURRENCY", "0")

	_, err := config.Load()
	assert.ErrorContains(t, err, "JOBS_CONCURRENCY")
}

func TestLoad_RejectsNegativeDropBudget(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONTRACT_MAX_DROP_BYTES", "-1")

	_, err := config.Load()
	assert.ErrorContains(t, err, "CONTRACT_MAX_DROP_BYTES")
}
