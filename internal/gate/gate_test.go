package gate

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/pennywise-bot/pennywise/internal/llm"
	"github.com/pennywise-bot/pennywise/internal/model"
	"github.com/pennywise-bot/pennywise/internal/signal"
)

type stubScorer struct {
	err    error
	score  float64
	calls  int
	prompt string
}

func (s *stubScorer) Score(_ context.Context, prompt string) (llm.ScoreResponse, error) {
	s.calls++
	s.prompt = prompt
	if s.err != nil {
		return llm.ScoreResponse{}, s.err
	}
	return llm.ScoreResponse{Score: s.score}, nil
}

func TestGate_NoSignalRejectsWithoutScoring(t *testing.T) {
	scorer := &stubScorer{score: 1.0}
	g := New(scorer, 0.95, nil)

	report := signal.Detect("Rent is expensive these days")
	decision := g.Check(context.Background(), report, "Rent is expensive these days")

	if decision.Proceed {
		t.Fatal("signal-free text must not proceed")
	}
	if decision.Code != model.CodeSignal {
		t.Errorf("Code = %s, want %s", decision.Code, model.CodeSignal)
	}
	if scorer.calls != 0 {
		t.Errorf("scoring service invoked %d times; must never be called without signals", scorer.calls)
	}
	if !strings.Contains(decision.UserMessage, "No expense detected") {
		t.Errorf("UserMessage = %q", decision.UserMessage)
	}
}

func TestGate_NoAmountRejectsWithoutScoring(t *testing.T) {
	scorer := &stubScorer{score: 1.0}
	g := New(scorer, 0.95, nil)

	// Verb evidence alone is not enough; amount evidence is mandatory.
	report := model.SignalReport{HasExpenseVerb: true}
	decision := g.Check(context.Background(), report, "already paid for everything there")

	if decision.Proceed {
		t.Fatal("amount-free text must not proceed")
	}
	if scorer.calls != 0 {
		t.Errorf("scoring service invoked %d times, want 0", scorer.calls)
	}
	if !strings.Contains(decision.UserMessage, "No amount detected") {
		t.Errorf("UserMessage = %q", decision.UserMessage)
	}
}

func TestGate_Threshold(t *testing.T) {
	tests := []struct {
		name        string
		score       float64
		threshold   float64
		wantProceed bool
	}{
		{"score at threshold accepted", 0.95, 0.95, true},
		{"score above threshold accepted", 0.99, 0.95, true},
		{"third party spending rejected", 0.05, 0.95, false},
		{"just below threshold rejected", 0.94, 0.95, false},
		{"lower configured threshold", 0.85, 0.80, true},
	}

	report := signal.Detect("Spent 150 for dinner at Dominos")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := &stubScorer{score: tt.score}
			g := New(scorer, tt.threshold, nil)

			decision := g.Check(context.Background(), report, "Spent 150 for dinner at Dominos")
			if decision.Proceed != tt.wantProceed {
				t.Errorf("Proceed = %v, want %v (score %v threshold %v)",
					decision.Proceed, tt.wantProceed, tt.score, tt.threshold)
			}
			if scorer.calls != 1 {
				t.Errorf("scoring service invoked %d times, want exactly 1", scorer.calls)
			}
			if !decision.Proceed && decision.Code != model.CodeConfidence {
				t.Errorf("Code = %s, want %s", decision.Code, model.CodeConfidence)
			}
		})
	}
}

func TestGate_ScorerFailureIsRejection(t *testing.T) {
	tests := []struct {
		name   string
		scorer *stubScorer
	}{
		{"service error", &stubScorer{err: errors.New("deadline exceeded")}},
		{"nan score", &stubScorer{score: math.NaN()}},
		{"infinite score", &stubScorer{score: math.Inf(1)}},
		{"score above one", &stubScorer{score: 1.5}},
		{"negative score", &stubScorer{score: -0.2}},
	}

	report := signal.Detect("Spent 150 for dinner at Dominos")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.scorer, 0.95, nil)
			decision := g.Check(context.Background(), report, "Spent 150 for dinner at Dominos")

			if decision.Proceed {
				t.Fatal("scorer failure must reject, not proceed")
			}
			if decision.Code != model.CodeConfidence {
				t.Errorf("Code = %s, want %s", decision.Code, model.CodeConfidence)
			}
			if tt.scorer.calls != 1 {
				t.Errorf("scorer invoked %d times; failures must not be retried", tt.scorer.calls)
			}
		})
	}
}

func TestGate_PromptMentionsMessage(t *testing.T) {
	scorer := &stubScorer{score: 1.0}
	g := New(scorer, 0.95, nil)

	report := signal.Detect("Spent 150 for dinner at Dominos")
	g.Check(context.Background(), report, "Spent 150 for dinner at Dominos")

	if !strings.Contains(scorer.prompt, "Spent 150 for dinner at Dominos") {
		t.Error("scoring prompt should embed the message text")
	}
	if !strings.Contains(scorer.prompt, `{"score"`) {
		t.Error("scoring prompt should pin the JSON response shape")
	}
}
