package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pennywise-bot/pennywise/internal/common"
)

// cleanMarkdownWrapper strips a ```json ... ``` fence if the model wrapped
// its output in one despite instructions.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// parseScoreJSON extracts the score value from a {"score": n} payload.
func parseScoreJSON(content string) (float64, error) {
	var payload struct {
		Score *float64 `json:"score"`
	}

	content = cleanMarkdownWrapper(content)
	if content == "" {
		return 0, common.ErrEmptyResponse
	}

	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrNoScore, err)
	}
	// Absence of the score must be a hard failure, not zero.
	if payload.Score == nil {
		return 0, common.ErrNoScore
	}

	return *payload.Score, nil
}
