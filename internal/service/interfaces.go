// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/pennywise-bot/pennywise/internal/model"
)

// Storage defines the contract for the persistence layer. From the intake
// pipeline's perspective the store is append-only: one insert per accepted
// message. Deletion is a separate, explicit operation.
type Storage interface {
	SaveExpense(ctx context.Context, expense *model.Expense) error
	MostRecentExpense(ctx context.Context, userID string) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	CategorySummary(ctx context.Context, userID string, since time.Time) ([]CategoryTotal, error)
	SaveBudget(ctx context.Context, userID string, period model.BudgetPeriod, amount float64) error
	Budget(ctx context.Context, userID string, period model.BudgetPeriod) (float64, error)
	Migrate(ctx context.Context) error
	Close() error
}

// CategoryTotal aggregates stored expenses for one category.
type CategoryTotal struct {
	Category string
	Count    int
	Total    float64
}

// Messenger delivers user-facing text back over the message transport.
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string, markdown bool) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
