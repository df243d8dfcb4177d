package llm

import (
	"errors"
	"testing"

	"github.com/pennywise-bot/pennywise/internal/common"
)

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain json untouched", `{"score": 0.9}`, `{"score": 0.9}`},
		{"json fence stripped", "```json\n{\"score\": 0.9}\n```", `{"score": 0.9}`},
		{"bare fence stripped", "```\n{\"score\": 0.9}\n```", `{"score": 0.9}`},
		{"surrounding whitespace trimmed", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanMarkdownWrapper(tt.content); got != tt.want {
				t.Errorf("cleanMarkdownWrapper(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestParseScoreJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
		wantErr error
	}{
		{"valid score", `{"score": 0.97}`, 0.97, nil},
		{"zero score is valid", `{"score": 0}`, 0, nil},
		{"fenced score", "```json\n{\"score\": 0.5}\n```", 0.5, nil},
		{"missing score is a hard failure", `{"confidence": 0.9}`, 0, common.ErrNoScore},
		{"empty content", "", 0, common.ErrEmptyResponse},
		{"non json", "definitely an expense", 0, common.ErrNoScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScoreJSON(tt.content)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseScoreJSON(%q) error = %v, want %v", tt.content, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseScoreJSON(%q) unexpected error: %v", tt.content, err)
			}
			if got != tt.want {
				t.Errorf("parseScoreJSON(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}
