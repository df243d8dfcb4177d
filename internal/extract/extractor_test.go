package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/llm"
)

type stubClient struct {
	err   error
	json  string
	calls int
	req   llm.ExtractionRequest
}

func (s *stubClient) Extract(_ context.Context, req llm.ExtractionRequest) (llm.ExtractionResponse, error) {
	s.calls++
	s.req = req
	if s.err != nil {
		return llm.ExtractionResponse{}, s.err
	}
	return llm.ExtractionResponse{JSONText: s.json}, nil
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
}

func TestExtractor_Extract(t *testing.T) {
	stub := &stubClient{json: `{"amount": 150, "category": "food", "description": "dinner", "date": "Mar 15, 2024", "time": "6:30 PM", "merchant": "dominos"}`}
	e := New(stub, nil, fixedClock, nil)

	candidate, err := e.Extract(context.Background(), "Spent 150 for dinner at Dominos")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if stub.calls != 1 {
		t.Errorf("extraction service invoked %d times, want exactly 1", stub.calls)
	}
	if candidate.Amount == nil || *candidate.Amount != 150 {
		t.Errorf("Amount = %v, want 150", candidate.Amount)
	}
	if candidate.Category == nil || *candidate.Category != "food" {
		t.Errorf("Category = %v, want food", candidate.Category)
	}
	if candidate.Merchant == nil || *candidate.Merchant != "dominos" {
		t.Errorf("Merchant = %v, want dominos", candidate.Merchant)
	}
}

func TestExtractor_NulledOptionalFields(t *testing.T) {
	stub := &stubClient{json: `{"amount": 120, "category": "food", "description": "lunch", "date": null, "time": null, "merchant": null}`}
	e := New(stub, nil, fixedClock, nil)

	candidate, err := e.Extract(context.Background(), "Lunch 120")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if candidate.Merchant != nil || candidate.Date != nil || candidate.Time != nil {
		t.Errorf("nulled fields should stay nil: %+v", candidate)
	}
}

func TestExtractor_Failures(t *testing.T) {
	tests := []struct {
		name string
		stub *stubClient
	}{
		{"service error", &stubClient{err: errors.New("upstream 503")}},
		{"empty response", &stubClient{json: ""}},
		{"malformed json", &stubClient{json: `{"amount": 150, "category":`}},
		{"non json prose", &stubClient{json: "happy to help with that expense!"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.stub, nil, fixedClock, nil)
			_, err := e.Extract(context.Background(), "Spent 150 for dinner")
			if !errors.Is(err, common.ErrExtraction) {
				t.Errorf("error = %v, want ErrExtraction", err)
			}
			if tt.stub.calls > 1 {
				t.Errorf("extraction retried %d times; paid calls must not be retried", tt.stub.calls)
			}
		})
	}
}

func TestBuildExtractionRequest(t *testing.T) {
	req := buildExtractionRequest("Spent 150 for dinner", fixedClock(), []string{"food", "travel"})

	if len(req.Examples) != 4 {
		t.Fatalf("prompt has %d examples, want 4", len(req.Examples))
	}
	if !strings.Contains(req.System, "Mar 15, 2024") {
		t.Error("system instruction should carry today's date")
	}
	if !strings.Contains(req.System, "6:30 PM") {
		t.Error("system instruction should carry the current time")
	}
	if !strings.Contains(req.System, "food, travel") {
		t.Error("system instruction should carry the category list")
	}
	// The relative-date example resolves "yesterday" against today.
	if !strings.Contains(req.Examples[2].Output, "Mar 14, 2024") {
		t.Errorf("yesterday example not resolved: %s", req.Examples[2].Output)
	}
	if req.Input != "Spent 150 for dinner" {
		t.Errorf("Input = %q", req.Input)
	}
}
