// Package openrouter implements models.TextCompleter against OpenRouter,
// which speaks the OpenAI chat-completions wire format.
package openrouter

import (
	"context"

	"github.com/sagarpatil/nutriscope/internal/ai/openai"
	"github.com/sagarpatil/nutriscope/internal/config"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

// Provider routes completions through OpenRouter's OpenAI-compatible API.
type Provider struct {
	inner *openai.Provider
}

func NewProvider(cfg config.OpenRouterConfig) *Provider {
	return &Provider{
		inner: openai.NewCompatible("openrouter", cfg.APIKey, cfg.Model, cfg.BaseURL),
	}
}

func (p *Provider) Name() string { return "openrouter" }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	return p.inner.Complete(ctx, req)
}

var _ models.TextCompleter = (*Provider)(nil)
