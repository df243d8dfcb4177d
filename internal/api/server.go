// Package api exposes the Telegram webhook over HTTP: request verification,
// bot-command dispatch, and the expense intake pipeline behind it.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/model"
	"github.com/pennywise-bot/pennywise/internal/pipeline"
	"github.com/pennywise-bot/pennywise/internal/service"
)

// maxStaleness bounds how old a webhook request may be before it is refused.
const maxStaleness = 5 * time.Minute

// Processor runs one raw message through the intake pipeline.
type Processor interface {
	Process(ctx context.Context, msg model.RawMessage) pipeline.Outcome
}

// Config holds the webhook server's verification settings.
type Config struct {
	ClientToken     string
	AllowedSenderID string
	ListenAddr      string
}

// Server is the webhook HTTP server.
type Server struct {
	processor Processor
	store     service.Storage
	messenger service.Messenger
	metrics   *Metrics
	logger    *slog.Logger
	cfg       Config
	now       func() time.Time
}

// NewServer creates a webhook server. The clock is injectable for tests; nil
// means time.Now.
func NewServer(cfg Config, processor Processor, store service.Storage, messenger service.Messenger, metrics *Metrics, now func() time.Time, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Server{
		cfg:       cfg,
		processor: processor,
		store:     store,
		messenger: messenger,
		metrics:   metrics,
		now:       now,
		logger:    logger,
	}
}

// Router assembles the chi routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/", s.handleWebhook)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

type webhookResponse struct {
	Reason string `json:"reason,omitempty"`
	OK     bool   `json:"ok"`
}

// telegramUpdate is the subset of the Bot API update payload we consume.
type telegramUpdate struct {
	Message struct {
		Text string `json:"text"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	// Staleness check comes first: a replayed request is refused before we
	// spend anything on it.
	sentAt := r.Header.Get("X-Request-Sent-Time")
	if sentAt == "" {
		s.metrics.Unauthorized.Inc()
		writeJSON(w, http.StatusBadRequest, webhookResponse{Reason: "missing timestamp"})
		return
	}
	millis, err := strconv.ParseInt(sentAt, 10, 64)
	if err != nil {
		s.metrics.Unauthorized.Inc()
		writeJSON(w, http.StatusBadRequest, webhookResponse{Reason: "bad timestamp"})
		return
	}
	if s.now().Sub(time.UnixMilli(millis)) > maxStaleness {
		s.metrics.Unauthorized.Inc()
		writeJSON(w, http.StatusBadRequest, webhookResponse{Reason: "stale request"})
		return
	}

	// A request without a client id is refused outright; the constant-time
	// comparison below is only meaningful between two non-empty values.
	clientID := r.Header.Get("X-Client-Id")
	if clientID == "" {
		s.metrics.Unauthorized.Inc()
		writeJSON(w, http.StatusBadRequest, webhookResponse{Reason: "no client id"})
		return
	}

	// A bad gateway token gets a contentless acknowledgment. Probing traffic
	// learns nothing from the response.
	if !common.ConstantTimeEquals(clientID, s.cfg.ClientToken) {
		s.metrics.Unauthorized.Inc()
		s.logger.Warn("webhook request with invalid client token")
		writeJSON(w, http.StatusOK, webhookResponse{})
		return
	}

	var update telegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, webhookResponse{Reason: "bad payload"})
		return
	}
	if update.Message.Text == "" {
		writeJSON(w, http.StatusOK, webhookResponse{OK: true, Reason: "ignored"})
		return
	}

	senderID := strconv.FormatInt(update.Message.From.ID, 10)
	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)

	if !common.ConstantTimeEquals(senderID, s.cfg.AllowedSenderID) {
		s.metrics.Unauthorized.Inc()
		s.logger.Warn("message from unknown sender")
		s.reply(r.Context(), chatID, "🤔 Hmm, I don't think we've met.", false)
		writeJSON(w, http.StatusOK, webhookResponse{OK: true})
		return
	}

	if handled := s.dispatchCommand(r.Context(), w, senderID, chatID, update.Message.Text); handled {
		return
	}

	start := s.now()
	outcome := s.processor.Process(r.Context(), model.RawMessage{
		Text:     update.Message.Text,
		SenderID: senderID,
		ChatID:   chatID,
	})
	s.metrics.PipelineSeconds.Observe(s.now().Sub(start).Seconds())

	if outcome.OK {
		s.metrics.observeAccepted()
		s.reply(r.Context(), chatID, outcome.Confirmation, true)
		writeJSON(w, http.StatusOK, webhookResponse{OK: true})
		return
	}

	s.metrics.observeRejected(string(outcome.Code))
	if outcome.UserMessage != "" {
		s.reply(r.Context(), chatID, outcome.UserMessage, false)
	}
	writeJSON(w, outcome.Status, webhookResponse{Reason: string(outcome.Code)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// reply delivers a message back to the chat. Delivery failures are logged,
// never surfaced to Telegram: the webhook already has its verdict.
func (s *Server) reply(ctx context.Context, chatID, text string, markdown bool) {
	if s.messenger == nil || text == "" {
		return
	}
	if err := s.messenger.SendMessage(ctx, chatID, text, markdown); err != nil {
		s.logger.Error("failed to deliver reply", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
