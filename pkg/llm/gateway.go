package llm

import (
	"context"
	"time"

	"cortex-ai-be/pkg/apperror"
)

// Gateway bounds every generation with a timeout and reports any provider
// failure as an UpstreamGeneration error.
type Gateway struct {
	provider LLMProvider
	timeout  time.Duration
	options  []Option
}

func NewGateway(provider LLMProvider, timeout time.Duration, options ...Option) *Gateway {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{
		provider: provider,
		timeout:  timeout,
		options:  options,
	}
}

func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	reply, err := g.provider.Generate(ctx, prompt, g.options...)
	if err != nil {
		return "", apperror.UpstreamGeneration(err)
	}
	return reply, nil
}
