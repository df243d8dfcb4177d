package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/model"
	"github.com/pennywise-bot/pennywise/internal/service"
)

// SaveExpense inserts a validated expense record.
func (s *SQLiteStorage) SaveExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	query := `
		INSERT INTO expenses (id, user_id, amount, category, description, date, time, merchant, platform, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		expense.ID,
		expense.UserID,
		expense.Amount,
		expense.Category,
		expense.Description,
		expense.Date,
		expense.Time,
		expense.Merchant,
		expense.Platform,
		expense.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to save expense: %v", common.ErrStorage, err)
	}

	return nil
}

// MostRecentExpense returns the user's newest expense by insertion time.
func (s *SQLiteStorage) MostRecentExpense(ctx context.Context, userID string) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, amount, category, description, date, time, merchant, platform, created_at
		FROM expenses
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`

	var expense model.Expense
	var createdAt string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&expense.ID,
		&expense.UserID,
		&expense.Amount,
		&expense.Category,
		&expense.Description,
		&expense.Date,
		&expense.Time,
		&expense.Merchant,
		&expense.Platform,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query most recent expense: %v", common.ErrStorage, err)
	}

	if ts, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		expense.CreatedAt = ts
	}

	return &expense, nil
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete expense: %v", common.ErrStorage, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to check delete result: %v", common.ErrStorage, err)
	}
	if rows == 0 {
		return common.ErrNotFound
	}

	return nil
}

// CategorySummary aggregates the user's expenses per category since the given
// time, highest total first.
func (s *SQLiteStorage) CategorySummary(ctx context.Context, userID string, since time.Time) ([]service.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT category, COUNT(*), SUM(amount)
		FROM expenses
		WHERE user_id = ? AND created_at >= ?
		GROUP BY category
		ORDER BY SUM(amount) DESC`

	rows, err := s.db.QueryContext(ctx, query, userID, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query category summary: %v", common.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	var totals []service.CategoryTotal
	for rows.Next() {
		var t service.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Count, &t.Total); err != nil {
			return nil, fmt.Errorf("%w: failed to scan summary row: %v", common.ErrStorage, err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate summary rows: %v", common.ErrStorage, err)
	}

	return totals, nil
}
