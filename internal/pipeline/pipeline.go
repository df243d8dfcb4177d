// Package pipeline sequences the expense intake stages and maps every
// failure to a caller-visible outcome.
package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pennywise-bot/pennywise/internal/extract"
	"github.com/pennywise-bot/pennywise/internal/gate"
	"github.com/pennywise-bot/pennywise/internal/model"
	"github.com/pennywise-bot/pennywise/internal/sanitize"
	"github.com/pennywise-bot/pennywise/internal/service"
	"github.com/pennywise-bot/pennywise/internal/signal"
	"github.com/pennywise-bot/pennywise/internal/telegram"
)

// Outcome is the terminal result of processing one message. UserMessage may
// be empty: some rejections are deliberately silent so probing traffic
// learns nothing.
type Outcome struct {
	Expense      *model.Expense
	Code         model.RejectionCode
	UserMessage  string
	Confirmation string
	Status       int
	OK           bool
}

// Pipeline runs the linear early-exit state machine:
// Received → Sanitized → SignalChecked → ConfidenceGated → Extracted →
// Validated → Persisted, any arrow may divert to Rejected(reason).
type Pipeline struct {
	sanitizer *sanitize.Sanitizer
	gate      *gate.Gate
	extractor *extract.Extractor
	validator *Validator
	store     service.Storage
	logger    *slog.Logger
	platform  string
}

// New assembles a pipeline. Every stage is owned by the pipeline; stages
// share no mutable state and each message is processed independently.
func New(sanitizer *sanitize.Sanitizer, g *gate.Gate, extractor *extract.Extractor, validator *Validator, store service.Storage, platform string, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if platform == "" {
		platform = "telegram"
	}
	return &Pipeline{
		sanitizer: sanitizer,
		gate:      g,
		extractor: extractor,
		validator: validator,
		store:     store,
		platform:  platform,
		logger:    logger,
	}
}

// Process runs one message through the full pipeline. Rejections are routine
// outcomes and come back as a populated Outcome, never as an error. The two
// paid stages are invoked at most once; nothing here retries them.
func (p *Pipeline) Process(ctx context.Context, msg model.RawMessage) Outcome {
	sanitized := p.sanitizer.Sanitize(msg.Text)
	if !sanitized.IsValid {
		p.logger.Debug("message rejected by sanitizer", "sender_id", msg.SenderID)
		return rejected(model.CodeSanitization, sanitized.UserMessage)
	}
	text := sanitized.SanitizedText

	report := signal.Detect(text)

	decision := p.gate.Check(ctx, report, text)
	if !decision.Proceed {
		p.logger.Debug("message rejected by confidence gate",
			"code", decision.Code,
			"score", decision.Score)
		return rejected(decision.Code, decision.UserMessage)
	}

	candidate, err := p.extractor.Extract(ctx, text)
	if err != nil {
		p.logger.Debug("extraction failed", "error", err)
		return rejected(model.CodeExtraction, "⚠️ Sorry, I could not parse the expense. Please try again.")
	}

	expense, err := p.validator.Validate(msg.SenderID, p.platform, candidate)
	if err != nil {
		p.logger.Debug("candidate failed validation", "error", err)
		return rejected(model.CodeValidation, "⚠️ Sorry, I could not parse the expense. Please try again.")
	}

	if err := p.store.SaveExpense(ctx, expense); err != nil {
		// Not retried here: a blind retry risks a duplicate insert. The
		// caller is told to retry explicitly.
		p.logger.Error("failed to persist expense",
			"error", err,
			"expense_id", expense.ID)
		return Outcome{
			Code:        model.CodeStorage,
			UserMessage: "⚠️ Sorry, I could not save the expense. Please try again.",
			Status:      http.StatusServiceUnavailable,
		}
	}

	p.logger.Info("expense persisted",
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"category", expense.Category,
		"score", decision.Score)

	return Outcome{
		OK:           true,
		Status:       http.StatusOK,
		Expense:      expense,
		Confirmation: confirmation(expense),
	}
}

func rejected(code model.RejectionCode, userMessage string) Outcome {
	return Outcome{
		Code:        code,
		UserMessage: userMessage,
		Status:      http.StatusOK,
	}
}

// confirmation renders the MarkdownV2 acknowledgment sent back on success.
func confirmation(e *model.Expense) string {
	amount := telegram.EscapeMarkdownV2(strconv.FormatFloat(e.Amount, 'f', -1, 64))
	category := telegram.EscapeMarkdownV2(e.Category)
	description := telegram.EscapeMarkdownV2(e.Description)
	merchant := telegram.EscapeMarkdownV2(e.Merchant)

	return "✅ Logged *" + amount + "* \\(" + category + "\\) for _" + description + "_ at _" + merchant + "_\\."
}

// IsStorageFailure reports whether the outcome needs caller-level
// escalation; every other rejection is expected traffic shaping.
func IsStorageFailure(o Outcome) bool {
	return o.Code == model.CodeStorage
}
