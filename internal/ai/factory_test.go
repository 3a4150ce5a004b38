package ai_test

import (
	"testing"

	"github.com/sagarpatil/nutriscope/internal/ai"
	"github.com/sagarpatil/nutriscope/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
	}{
		{"mock", "mock"},
		{"openai", "openai"},
		{"openrouter", "openrouter"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := ai.NewProvider(config.AIConfig{Provider: tt.provider})
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := ai.NewProvider(config.AIConfig{Provider: "skynet"})
	assert.ErrorContains(t, err, "unknown AI provider")
}
