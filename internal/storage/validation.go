package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("%w: context cannot be nil", common.ErrInvalidConfig)
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%w: %s cannot be empty", common.ErrInvalidConfig, name)
	}
	return nil
}

// validateExpense is the storage layer's last line of defense. The pipeline
// validator should never hand us a record that fails here.
func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense cannot be nil", common.ErrValidation)
	}
	if expense.ID == "" {
		return fmt.Errorf("%w: expense ID cannot be empty", common.ErrValidation)
	}
	if expense.UserID == "" {
		return fmt.Errorf("%w: expense user ID cannot be empty", common.ErrValidation)
	}
	if math.IsNaN(expense.Amount) || math.IsInf(expense.Amount, 0) {
		return fmt.Errorf("%w: expense amount is not finite", common.ErrValidation)
	}
	if expense.Amount <= model.MinAmount || expense.Amount > model.MaxAmount {
		return fmt.Errorf("%w: expense amount %v out of range", common.ErrValidation, expense.Amount)
	}
	if expense.Category == "" {
		return fmt.Errorf("%w: expense category cannot be empty", common.ErrValidation)
	}
	return nil
}
