// Package mock provides a canned models.TextCompleter for development and
// tests. It is also the provider of record when no API key is configured.
package mock

import (
	"context"

	"github.com/sagarpatil/nutriscope/pkg/models"
)

// defaultCompletion is a plausible model reply: valid payload wrapped in the
// prose and fencing real models emit, so the extraction path gets exercised
// even in development.
const defaultCompletion = "Here is the requested analysis:\n```json\n" +
	`[{"food_name":"oatmeal","meal_type":"breakfast",` +
	`"serving":{"description":"1 bowl","grams":240},` +
	`"ingredients":[{"name":"rolled oats","portion_percent":70},{"name":"milk","portion_percent":30}],` +
	`"nutrients":{"fiber":{"full_name":"Dietary Fiber","class":"macronutrient","impact":"positive",` +
	`"total_amount":4,"unit":"g","contributions":[{"ingredient_name":"rolled oats","amount":4,"percent_of_total":100}]}}}]` +
	"\n```\nLet me know if you need anything else."

// Provider satisfies models.TextCompleter for testing.
type Provider struct {
	Name_        string
	CompleteFunc func(ctx context.Context, req models.CompletionRequest) (string, error)
}

func (p *Provider) Name() string { return p.Name_ }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	if p.CompleteFunc != nil {
		return p.CompleteFunc(ctx, req)
	}
	return defaultCompletion, nil
}

// NewProvider returns a Provider with a sensible default completion.
func NewProvider() *Provider {
	return &Provider{Name_: "mock"}
}

// NewStaticProvider returns a Provider that always replies with completion.
func NewStaticProvider(completion string) *Provider {
	return &Provider{
		Name_: "mock-static",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return completion, nil
		},
	}
}

// NewFailingProvider returns a Provider that always returns the given error.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a Provider that blocks until context
// cancellation.
func NewTimeoutProvider() *Provider {
	return &Provider{
		Name_: "mock-timeout",
		CompleteFunc: func(ctx context.Context, _ models.CompletionRequest) (string, error) {
			<-ctx.Done()
			return "", models.ErrCompletionTimeout
		},
	}
}

// Compile-time check that Provider implements TextCompleter.
var _ models.TextCompleter = (*Provider)(nil)
