package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/model"
)

func TestSaveAndGetBudget(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.SaveBudget(ctx, "user-1", model.BudgetDaily, 500); err != nil {
		t.Fatalf("SaveBudget() error = %v", err)
	}

	got, err := store.Budget(ctx, "user-1", model.BudgetDaily)
	if err != nil {
		t.Fatalf("Budget() error = %v", err)
	}
	if got != 500 {
		t.Errorf("Budget() = %v, want 500", got)
	}
}

func TestSaveBudgetReplacesExisting(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.SaveBudget(ctx, "user-1", model.BudgetMonthly, 10000); err != nil {
		t.Fatalf("SaveBudget() error = %v", err)
	}
	if err := store.SaveBudget(ctx, "user-1", model.BudgetMonthly, 12000); err != nil {
		t.Fatalf("second SaveBudget() error = %v", err)
	}

	got, err := store.Budget(ctx, "user-1", model.BudgetMonthly)
	if err != nil {
		t.Fatalf("Budget() error = %v", err)
	}
	if got != 12000 {
		t.Errorf("Budget() = %v, want 12000 after replace", got)
	}
}

func TestBudgetPeriodsAreIndependent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.SaveBudget(ctx, "user-1", model.BudgetDaily, 500); err != nil {
		t.Fatalf("SaveBudget() error = %v", err)
	}

	if _, err := store.Budget(ctx, "user-1", model.BudgetWeekly); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Budget(weekly) error = %v, want ErrNotFound", err)
	}
	if _, err := store.Budget(ctx, "user-2", model.BudgetDaily); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Budget(other user) error = %v, want ErrNotFound", err)
	}
}

func TestSaveBudgetValidation(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		period model.BudgetPeriod
		amount float64
	}{
		{"unknown period", "yearly", 500},
		{"zero amount", model.BudgetDaily, 0},
		{"negative amount", model.BudgetDaily, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveBudget(ctx, "user-1", tt.period, tt.amount)
			if !errors.Is(err, common.ErrValidation) {
				t.Errorf("SaveBudget() error = %v, want ErrValidation", err)
			}
		})
	}
}
