package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/config"
	"github.com/pennywise-bot/pennywise/internal/storage"
)

func recentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recently stored expense",
		RunE:  runRecent,
	}

	cmd.Flags().String("user", "", "user ID to query (default: configured webhook sender)")
	cmd.Flags().Bool("delete", false, "delete the expense after showing it")

	return cmd
}

func runRecent(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	deleteAfter, _ := cmd.Flags().GetBool("delete")

	if userID == "" {
		userID = viper.GetString("webhook.allowed_sender_id")
	}
	if userID == "" {
		return errors.New("no user ID: pass --user or set webhook.allowed_sender_id")
	}

	dbPath, err := databasePath()
	if err != nil {
		return err
	}
	store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	expense, err := store.MostRecentExpense(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		fmt.Println("No expenses stored for this user.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("ID:          %s\n", expense.ID)
	fmt.Printf("Amount:      %.2f\n", expense.Amount)
	fmt.Printf("Category:    %s\n", expense.Category)
	fmt.Printf("Description: %s\n", expense.Description)
	fmt.Printf("Merchant:    %s\n", expense.Merchant)
	fmt.Printf("Date:        %s %s\n", expense.Date, expense.Time)
	fmt.Printf("Created:     %s\n", expense.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	if deleteAfter {
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		fmt.Println("Deleted.")
	}

	return nil
}
