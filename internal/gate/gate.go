// Package gate implements the admission-control stage that decides, cheap
// signals first and a paid sentiment score second, whether text proceeds to
// costly extraction.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/pennywise-bot/pennywise/internal/llm"
	"github.com/pennywise-bot/pennywise/internal/model"
)

// DefaultThreshold is the default acceptance threshold for the sentiment
// score. It is deliberately high: a false acceptance corrupts financial
// records while a false rejection only costs the user a retry.
const DefaultThreshold = 0.95

const retryMessage = "⁉️ Sorry, can't figure out what that was. Try: `Lunch 150 at Dominos`"

// Scorer is the paid text-to-score capability the gate invokes at most once
// per message.
type Scorer interface {
	Score(ctx context.Context, prompt string) (llm.ScoreResponse, error)
}

// Decision is the gate's verdict for one message.
type Decision struct {
	Code        model.RejectionCode
	UserMessage string
	Score       float64
	Proceed     bool
}

// Gate consumes a signal report and short-circuits obviously-non-expense
// text before spending an inference call.
type Gate struct {
	scorer    Scorer
	logger    *slog.Logger
	threshold float64
}

// New creates a confidence gate. A zero threshold falls back to the default.
func New(scorer Scorer, threshold float64, logger *slog.Logger) *Gate {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{scorer: scorer, threshold: threshold, logger: logger}
}

// Check applies the three strictly ordered phases: free no-signal rejection,
// free no-amount rejection, then a single paid sentiment call. Scoring
// failures are rejections, never faults, and are not retried.
func (g *Gate) Check(ctx context.Context, report model.SignalReport, text string) Decision {
	if report.Empty() {
		return Decision{
			Code:        model.CodeSignal,
			UserMessage: "⁉️ No expense detected. Try: `Lunch 150 at Dominos`",
		}
	}

	// Amount evidence is mandatory even when other signals fired.
	if !report.HasAmountEvidence() {
		return Decision{
			Code:        model.CodeSignal,
			UserMessage: "⁉️ No amount detected. Try: `Lunch 150 at Dominos`",
		}
	}

	resp, err := g.scorer.Score(ctx, buildScorePrompt(text))
	if err != nil {
		g.logger.Debug("sentiment scoring failed", "error", err)
		return Decision{Code: model.CodeConfidence, UserMessage: retryMessage}
	}

	// Scores outside [0,1] mean the provider ignored the response schema;
	// treat them like an unparseable score, not as high confidence.
	score := resp.Score
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 || score > 1 {
		g.logger.Debug("sentiment score out of range", "score", score)
		return Decision{Code: model.CodeConfidence, UserMessage: retryMessage}
	}

	if score < g.threshold {
		g.logger.Debug("sentiment below threshold",
			"score", score,
			"threshold", g.threshold)
		return Decision{Code: model.CodeConfidence, UserMessage: retryMessage, Score: score}
	}

	return Decision{Proceed: true, Score: score}
}

// buildScorePrompt creates the classification prompt for the scoring service.
func buildScorePrompt(text string) string {
	return fmt.Sprintf(`Decide whether the following message describes a monetary expense made by the author themselves, in the past or present. The subject may be explicit ("I paid") or implied ("paid 200 for lunch").

Score 1.0 when the author paid or spent the money, explicitly or implicitly.
Score near 0.0 for spending by someone else, for income or money received, for factual or general statements about prices, and for future or hypothetical spending.

Respond with only a JSON object of the form {"score": <number between 0.0 and 1.0>}.

Message: %q`, text)
}
