package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/model"
	"github.com/pennywise-bot/pennywise/internal/telegram"
)

// dispatchCommand handles bot commands before the expense pipeline sees the
// text. Returns true when the message was a command and a response was
// written.
func (s *Server) dispatchCommand(ctx context.Context, w http.ResponseWriter, senderID, chatID, text string) bool {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return false
	}
	command := strings.ToLower(fields[0])
	if i := strings.IndexByte(command, '@'); i > 0 {
		command = command[:i]
	}
	args := fields[1:]

	switch command {
	case "/delete_last":
		s.handleDeleteLast(ctx, w, senderID, chatID)
		return true
	case "/summary":
		s.handleSummary(ctx, w, senderID, chatID, args)
		return true
	case "/setmydailybudget":
		s.handleSetBudget(ctx, w, senderID, chatID, model.BudgetDaily, args)
		return true
	case "/setmyweeklybudget":
		s.handleSetBudget(ctx, w, senderID, chatID, model.BudgetWeekly, args)
		return true
	case "/setmymonthlybudget":
		s.handleSetBudget(ctx, w, senderID, chatID, model.BudgetMonthly, args)
		return true
	default:
		return false
	}
}

func (s *Server) handleDeleteLast(ctx context.Context, w http.ResponseWriter, senderID, chatID string) {
	expense, err := s.store.MostRecentExpense(ctx, senderID)
	if errors.Is(err, common.ErrNotFound) {
		s.reply(ctx, chatID, "🤷 Nothing to delete.", false)
		writeJSON(w, http.StatusOK, webhookResponse{OK: true})
		return
	}
	if err != nil {
		s.logger.Error("failed to look up last expense", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, webhookResponse{Reason: "storage"})
		return
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", expense.ID)
		writeJSON(w, http.StatusServiceUnavailable, webhookResponse{Reason: "storage"})
		return
	}

	text := fmt.Sprintf("🗑️ Deleted *%s* \\(%s\\)\\.",
		telegram.EscapeMarkdownV2(formatAmount(expense.Amount)),
		telegram.EscapeMarkdownV2(expense.Description))
	s.reply(ctx, chatID, text, true)
	writeJSON(w, http.StatusOK, webhookResponse{OK: true})
}

// summaryRange maps a summary period argument to its reporting window, its
// title, and the budget period it is checked against.
func (s *Server) summaryRange(arg string) (since time.Time, title string, budgetPeriod model.BudgetPeriod, ok bool) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch arg {
	case "day", "today":
		return dayStart, "Today", model.BudgetDaily, true
	case "week":
		return dayStart.AddDate(0, 0, -6), "Last 7 days", model.BudgetWeekly, true
	case "month", "":
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return monthStart, now.Format("January 2006"), model.BudgetMonthly, true
	default:
		return time.Time{}, "", "", false
	}
}

func (s *Server) handleSummary(ctx context.Context, w http.ResponseWriter, senderID, chatID string, args []string) {
	arg := ""
	if len(args) > 0 {
		arg = strings.ToLower(args[0])
	}
	since, title, budgetPeriod, ok := s.summaryRange(arg)
	if !ok {
		s.reply(ctx, chatID, "⁉️ Usage: /summary [day|week|month]", false)
		writeJSON(w, http.StatusOK, webhookResponse{OK: true})
		return
	}

	totals, err := s.store.CategorySummary(ctx, senderID, since)
	if err != nil {
		s.logger.Error("failed to build summary", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, webhookResponse{Reason: "storage"})
		return
	}

	if len(totals) == 0 {
		s.reply(ctx, chatID, "📊 No expenses logged in this period.", false)
		writeJSON(w, http.StatusOK, webhookResponse{OK: true})
		return
	}

	var b strings.Builder
	b.WriteString("📊 *" + telegram.EscapeMarkdownV2(title) + "*\n")
	var grand float64
	for _, t := range totals {
		grand += t.Total
		fmt.Fprintf(&b, "%s: *%s* \\(%d\\)\n",
			telegram.EscapeMarkdownV2(t.Category),
			telegram.EscapeMarkdownV2(formatAmount(t.Total)),
			t.Count)
	}
	b.WriteString("Total: *" + telegram.EscapeMarkdownV2(formatAmount(grand)) + "*")

	budget, err := s.store.Budget(ctx, senderID, budgetPeriod)
	switch {
	case err == nil:
		fmt.Fprintf(&b, "\nBudget: *%s*, left: *%s*",
			telegram.EscapeMarkdownV2(formatAmount(budget)),
			telegram.EscapeMarkdownV2(formatAmount(budget-grand)))
	case !errors.Is(err, common.ErrNotFound):
		s.logger.Error("failed to look up budget", "error", err)
	}

	s.reply(ctx, chatID, b.String(), true)
	writeJSON(w, http.StatusOK, webhookResponse{OK: true})
}

func (s *Server) handleSetBudget(ctx context.Context, w http.ResponseWriter, senderID, chatID string, period model.BudgetPeriod, args []string) {
	usage := fmt.Sprintf("⁉️ Usage: /setmy%sbudget 500", period)

	if len(args) != 1 {
		s.reply(ctx, chatID, usage, false)
		writeJSON(w, http.StatusOK, webhookResponse{OK: true})
		return
	}
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil || amount <= 0 {
		s.reply(ctx, chatID, usage, false)
		writeJSON(w, http.StatusOK, webhookResponse{OK: true})
		return
	}

	if err := s.store.SaveBudget(ctx, senderID, period, amount); err != nil {
		s.logger.Error("failed to save budget", "error", err, "period", period)
		writeJSON(w, http.StatusServiceUnavailable, webhookResponse{Reason: "storage"})
		return
	}

	label := string(period)
	label = strings.ToUpper(label[:1]) + label[1:]
	text := fmt.Sprintf("💰 %s budget set to *%s*\\.", label,
		telegram.EscapeMarkdownV2(formatAmount(amount)))
	s.reply(ctx, chatID, text, true)
	writeJSON(w, http.StatusOK, webhookResponse{OK: true})
}

func formatAmount(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
