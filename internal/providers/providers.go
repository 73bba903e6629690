package providers

import (
	"context"
)

// Config represents one completion request to an LLM provider
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	MaxTokens   int
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Complete(ctx context.Context, config Config) (string, error)
}

// Func adapts a plain function to the Provider interface, mainly for tests.
type Func func(ctx context.Context, config Config) (string, error)

func (f Func) Complete(ctx context.Context, config Config) (string, error) {
	return f(ctx, config)
}
