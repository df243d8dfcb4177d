// Package extract turns gate-accepted text into a candidate expense record
// via the external structured-extraction service.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/llm"
	"github.com/pennywise-bot/pennywise/internal/model"
)

// maxResponseTokens bounds the extraction response; a candidate expense
// never legitimately needs more.
const maxResponseTokens = 500

// Client is the paid text-to-structured-fields capability.
type Client interface {
	Extract(ctx context.Context, req llm.ExtractionRequest) (llm.ExtractionResponse, error)
}

// Extractor builds the few-shot prompt and parses the model's JSON output.
type Extractor struct {
	client     Client
	logger     *slog.Logger
	clock      func() time.Time
	categories []string
}

// New creates an extractor. The clock is injectable for tests; nil means
// time.Now.
func New(client Client, categories []string, clock func() time.Time, logger *slog.Logger) *Extractor {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(categories) == 0 {
		categories = model.DefaultCategories
	}
	return &Extractor{
		client:     client,
		categories: categories,
		clock:      clock,
		logger:     logger,
	}
}

// Extract invokes the extraction service exactly once and parses the result.
// The caller must not retry on failure; a retry would double-charge the
// metered call.
func (e *Extractor) Extract(ctx context.Context, text string) (model.CandidateExpense, error) {
	now := e.clock()
	req := buildExtractionRequest(text, now, e.categories)
	req.MaxTokens = maxResponseTokens

	resp, err := e.client.Extract(ctx, req)
	if err != nil {
		return model.CandidateExpense{}, fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}
	if resp.JSONText == "" {
		return model.CandidateExpense{}, fmt.Errorf("%w: %v", common.ErrExtraction, common.ErrEmptyResponse)
	}

	var candidate model.CandidateExpense
	if err := json.Unmarshal([]byte(resp.JSONText), &candidate); err != nil {
		e.logger.Debug("extraction output not parseable",
			"error", err,
			"output_len", len(resp.JSONText))
		return model.CandidateExpense{}, fmt.Errorf("%w: unparseable output: %v", common.ErrExtraction, err)
	}

	return candidate, nil
}
