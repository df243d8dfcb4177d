package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/pennywise-bot/pennywise/internal/common"
)

// geminiClient implements the Client interface on the Gemini API.
type geminiClient struct {
	client       *genai.Client
	scoreModel   string
	extractModel string
	maxTokens    int
}

// scoreSchema constrains the scoring response to a single number in [0,1].
var scoreSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score": {
			Type:        genai.TypeNumber,
			Description: "A score between 0.0 and 1.0.",
			Minimum:     genai.Ptr(0.0),
			Maximum:     genai.Ptr(1.0),
		},
	},
	Required: []string{"score"},
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(ctx context.Context, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", common.ErrMissingConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	scoreModel := cfg.ScoreModel
	if scoreModel == "" {
		scoreModel = "gemini-2.5-flash-lite"
	}
	extractModel := cfg.ExtractModel
	if extractModel == "" {
		extractModel = "gemini-2.5-flash"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 500
	}

	return &geminiClient{
		client:       client,
		scoreModel:   scoreModel,
		extractModel: extractModel,
		maxTokens:    maxTokens,
	}, nil
}

// Score sends a scoring request with a fixed response schema.
func (c *geminiClient) Score(ctx context.Context, prompt string) (ScoreResponse, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   scoreSchema,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.scoreModel, genai.Text(prompt), config)
	if err != nil {
		return ScoreResponse{}, fmt.Errorf("Gemini scoring request failed: %w", err)
	}

	text, err := firstCandidateText(resp)
	if err != nil {
		return ScoreResponse{}, err
	}

	score, err := parseScoreJSON(text)
	if err != nil {
		return ScoreResponse{}, err
	}

	return ScoreResponse{Score: score}, nil
}

// Extract runs the few-shot conversation with deterministic decoding.
func (c *geminiClient) Extract(ctx context.Context, req ExtractionRequest) (ExtractionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		MaxOutputTokens:  int32(maxTokens),
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		},
	}

	contents := make([]*genai.Content, 0, len(req.Examples)*2+1)
	for _, ex := range req.Examples {
		contents = append(contents,
			&genai.Content{Role: "user", Parts: []*genai.Part{{Text: ex.Input}}},
			&genai.Content{Role: "model", Parts: []*genai.Part{{Text: ex.Output}}},
		)
	}
	contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: req.Input}}})

	resp, err := c.client.Models.GenerateContent(ctx, c.extractModel, contents, config)
	if err != nil {
		return ExtractionResponse{}, fmt.Errorf("Gemini extraction request failed: %w", err)
	}

	text, err := firstCandidateText(resp)
	if err != nil {
		return ExtractionResponse{}, err
	}

	return ExtractionResponse{JSONText: cleanMarkdownWrapper(text)}, nil
}

// firstCandidateText concatenates the text parts of the first candidate.
func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", common.ErrEmptyResponse
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	if text == "" {
		return "", common.ErrEmptyResponse
	}
	return text, nil
}
