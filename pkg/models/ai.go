package models

import (
	"context"
	"errors"
)

// Sentinel errors shared by all provider implementations. Callers branch on
// these with errors.Is to decide between failing a job and falling back.
var (
	ErrProviderUnavailable = errors.New("model provider unavailable")
	ErrCompletionTimeout   = errors.New("model completion timeout")
	ErrEmptyCompletion     = errors.New("model returned empty completion")
)

// TextCompleter is the core interface that all model integrations must
// implement. Never call specific providers directly; always inject this
// interface. Implementations must be safe for concurrent use; the completion
// they return is free text that is merely supposed to contain JSON.
type TextCompleter interface {
	// Complete sends one prompt and returns the raw completion text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Name returns the provider identifier (e.g., "openai", "openrouter").
	Name() string
}

// CompletionRequest is the input to a single model call.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}
