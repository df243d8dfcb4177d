package llm

import (
	"context"
	"fmt"
	"strings"
)

// NewClient creates an inference client for the configured provider, wrapped
// with a token-bucket rate limiter.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	var (
		client Client
		err    error
	)

	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		client, err = newGeminiClient(ctx, cfg)
	case "openai":
		client, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create inference client: %w", err)
	}

	return &limitedClient{
		inner:   client,
		limiter: newRateLimiter(cfg.RateLimit),
	}, nil
}

// limitedClient applies the rate limiter in front of every metered call.
type limitedClient struct {
	inner   Client
	limiter *rateLimiter
}

func (c *limitedClient) Score(ctx context.Context, prompt string) (ScoreResponse, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return ScoreResponse{}, err
	}
	return c.inner.Score(ctx, prompt)
}

func (c *limitedClient) Extract(ctx context.Context, req ExtractionRequest) (ExtractionResponse, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return ExtractionResponse{}, err
	}
	return c.inner.Extract(ctx, req)
}

// Close stops the rate limiter's background goroutine.
func (c *limitedClient) Close() error {
	c.limiter.Close()
	return nil
}
