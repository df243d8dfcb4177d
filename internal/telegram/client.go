// Package telegram implements the message-transport collaborator: delivery
// of confirmation and advisory text back to the user via the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/service"
)

const apiBase = "https://api.telegram.org"

// Client sends messages through the Telegram Bot API. It implements
// service.Messenger.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	retryOpts  service.RetryOptions
}

// NewClient creates a Bot API client.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: telegram bot token is required", common.ErrMissingConfig)
	}

	return &Client{
		token:   token,
		baseURL: apiBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// SendMessage delivers text to a chat. Markdown messages use MarkdownV2
// parse mode; the caller is responsible for escaping. Delivery is retried —
// unlike inference calls, a resend costs nothing.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, markdown bool) error {
	payload := sendMessageRequest{
		ChatID: chatID,
		Text:   text,
	}
	if markdown {
		payload.ParseMode = "MarkdownV2"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)

	return common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
			return &common.RetryableError{
				Err:       fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(respBody)),
				Retryable: retryable,
			}
		}
		return nil
	}, c.retryOpts)
}
