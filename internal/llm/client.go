package llm

import (
	"context"
	"time"
)

// Client defines the interface for inference providers. Both operations are
// metered: the pipeline invokes each at most once per message and never
// retries them automatically.
type Client interface {
	// Score asks the provider for a single confidence value in [0,1] for
	// the given classification prompt.
	Score(ctx context.Context, prompt string) (ScoreResponse, error)
	// Extract runs the few-shot structured-extraction conversation and
	// returns the raw JSON text produced by the model.
	Extract(ctx context.Context, req ExtractionRequest) (ExtractionResponse, error)
}

// ScoreResponse contains the provider's confidence score.
type ScoreResponse struct {
	Score float64
}

// Exchange is one worked example in a few-shot prompt: a user input and the
// exact assistant output expected for it.
type Exchange struct {
	Input  string
	Output string
}

// ExtractionRequest describes one structured-extraction conversation.
type ExtractionRequest struct {
	System    string
	Input     string
	Examples  []Exchange
	MaxTokens int
}

// ExtractionResponse carries the raw model output, cleaned of markdown
// wrappers but otherwise unparsed.
type ExtractionResponse struct {
	JSONText string
}

// Config holds configuration for inference clients.
type Config struct {
	Provider     string
	APIKey       string
	ScoreModel   string
	ExtractModel string
	MaxTokens    int
	RateLimit    int
	Timeout      time.Duration
}
