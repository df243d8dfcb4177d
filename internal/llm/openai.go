package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pennywise-bot/pennywise/internal/common"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// openAIClient implements the Client interface for the OpenAI API.
type openAIClient struct {
	httpClient   *http.Client
	apiKey       string
	scoreModel   string
	extractModel string
	maxTokens    int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	scoreModel := cfg.ScoreModel
	if scoreModel == "" {
		scoreModel = "gpt-4o-mini"
	}
	extractModel := cfg.ExtractModel
	if extractModel == "" {
		extractModel = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 500
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &openAIClient{
		apiKey:       cfg.APIKey,
		scoreModel:   scoreModel,
		extractModel: extractModel,
		maxTokens:    maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Score sends a scoring request and parses the {"score": n} payload.
func (c *openAIClient) Score(ctx context.Context, prompt string) (ScoreResponse, error) {
	messages := []map[string]string{
		{
			"role":    "system",
			"content": "You are a strict classifier. You MUST respond with ONLY a valid JSON object of the form {\"score\": <number>}. No explanatory text, no markdown.",
		},
		{
			"role":    "user",
			"content": prompt,
		},
	}

	content, err := c.complete(ctx, c.scoreModel, messages, 50)
	if err != nil {
		return ScoreResponse{}, err
	}

	score, err := parseScoreJSON(content)
	if err != nil {
		return ScoreResponse{}, err
	}

	return ScoreResponse{Score: score}, nil
}

// Extract runs the few-shot conversation and returns the raw JSON text.
func (c *openAIClient) Extract(ctx context.Context, req ExtractionRequest) (ExtractionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	messages := make([]map[string]string, 0, len(req.Examples)*2+2)
	messages = append(messages, map[string]string{"role": "system", "content": req.System})
	for _, ex := range req.Examples {
		messages = append(messages,
			map[string]string{"role": "user", "content": ex.Input},
			map[string]string{"role": "assistant", "content": ex.Output},
		)
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Input})

	content, err := c.complete(ctx, c.extractModel, messages, maxTokens)
	if err != nil {
		return ExtractionResponse{}, err
	}

	return ExtractionResponse{JSONText: cleanMarkdownWrapper(content)}, nil
}

// complete performs one chat-completions request with deterministic decoding.
func (c *openAIClient) complete(ctx context.Context, model string, messages []map[string]string, maxTokens int) (string, error) {
	requestBody := map[string]any{
		"model":           model,
		"messages":        messages,
		"temperature":     0.0,
		"max_tokens":      maxTokens,
		"response_format": map[string]string{"type": "json_object"},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", common.ErrEmptyResponse
	}

	return response.Choices[0].Message.Content, nil
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Created int64 `json:"created"`
}
