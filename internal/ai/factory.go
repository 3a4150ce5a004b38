// Package ai selects and constructs text-completion providers.
package ai

import (
	"fmt"

	"github.com/sagarpatil/nutriscope/internal/ai/mock"
	"github.com/sagarpatil/nutriscope/internal/ai/openai"
	"github.com/sagarpatil/nutriscope/internal/ai/openrouter"
	"github.com/sagarpatil/nutriscope/internal/config"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

// NewProvider constructs the appropriate completion provider based on config.
// Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.TextCompleter, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "openrouter":
		return openrouter.NewProvider(cfg.OpenRouter), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, openrouter, mock", cfg.Provider)
	}
}
