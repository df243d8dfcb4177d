package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/model"
)

func validatePeriod(period model.BudgetPeriod) error {
	switch period {
	case model.BudgetDaily, model.BudgetWeekly, model.BudgetMonthly:
		return nil
	default:
		return fmt.Errorf("%w: unknown budget period %q", common.ErrValidation, period)
	}
}

// SaveBudget stores or replaces the user's budget for one period.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, userID string, period model.BudgetPeriod, amount float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validatePeriod(period); err != nil {
		return err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: budget amount %v must be positive", common.ErrValidation, amount)
	}

	query := `
		INSERT INTO budgets (user_id, period, amount, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, period) DO UPDATE SET
			amount = excluded.amount,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, userID, string(period), amount, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: failed to save budget: %v", common.ErrStorage, err)
	}
	return nil
}

// Budget returns the user's budget for one period, or ErrNotFound when none
// is set.
func (s *SQLiteStorage) Budget(ctx context.Context, userID string, period model.BudgetPeriod) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}
	if err := validatePeriod(period); err != nil {
		return 0, err
	}

	var amount float64
	err := s.db.QueryRowContext(ctx,
		`SELECT amount FROM budgets WHERE user_id = ? AND period = ?`,
		userID, string(period),
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, common.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: failed to query budget: %v", common.ErrStorage, err)
	}
	return amount, nil
}
