package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/service"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	client.baseURL = srv.URL
	client.retryOpts = service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
	return client
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient("")
	if !errors.Is(err, common.ErrMissingConfig) {
		t.Errorf("NewClient(\"\") error = %v, want ErrMissingConfig", err)
	}
}

func TestSendMessagePayload(t *testing.T) {
	var got sendMessageRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := client.SendMessage(context.Background(), "777", "✅ Logged *150*", true)
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if got.ChatID != "777" {
		t.Errorf("chat_id = %q, want 777", got.ChatID)
	}
	if got.ParseMode != "MarkdownV2" {
		t.Errorf("parse_mode = %q, want MarkdownV2", got.ParseMode)
	}
}

func TestSendMessagePlainTextOmitsParseMode(t *testing.T) {
	var got sendMessageRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})

	if err := client.SendMessage(context.Background(), "777", "plain", false); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if got.ParseMode != "" {
		t.Errorf("parse_mode = %q, want empty", got.ParseMode)
	}
}

func TestSendMessageRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.SendMessage(context.Background(), "777", "text", false); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

func TestSendMessageDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	err := client.SendMessage(context.Background(), "777", "text", false)
	if err == nil {
		t.Fatal("SendMessage() succeeded, want error")
	}
	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, want 1", calls.Load())
	}
}
