package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pennywise-bot/pennywise/internal/api"
	"github.com/pennywise-bot/pennywise/internal/config"
	"github.com/pennywise-bot/pennywise/internal/extract"
	"github.com/pennywise-bot/pennywise/internal/gate"
	"github.com/pennywise-bot/pennywise/internal/llm"
	"github.com/pennywise-bot/pennywise/internal/model"
	"github.com/pennywise-bot/pennywise/internal/pipeline"
	"github.com/pennywise-bot/pennywise/internal/sanitize"
	"github.com/pennywise-bot/pennywise/internal/storage"
	"github.com/pennywise-bot/pennywise/internal/telegram"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		Long: `Start the HTTP server that receives Telegram webhook updates,
runs each message through the expense intake pipeline, and replies in chat.`,
		RunE: runServe,
	}

	cmd.Flags().String("listen", ":8080", "listen address")
	_ = viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dbPath, err := databasePath()
	if err != nil {
		return err
	}
	store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	client, err := llm.NewClient(ctx, llm.Config{
		Provider:     viper.GetString("llm.provider"),
		APIKey:       viper.GetString("llm.api_key"),
		ScoreModel:   viper.GetString("llm.score_model"),
		ExtractModel: viper.GetString("llm.extract_model"),
		RateLimit:    viper.GetInt("llm.rate_limit"),
		Timeout:      viper.GetDuration("llm.timeout"),
	})
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := client.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	botToken := viper.GetString("telegram.token")
	if botToken == "" {
		return errors.New("telegram.token is required")
	}
	messenger, err := telegram.NewClient(botToken)
	if err != nil {
		return err
	}

	categories := viper.GetStringSlice("categories.list")
	policy := model.CategoryPolicy(viper.GetString("categories.policy"))

	p := pipeline.New(
		sanitize.New(sanitize.Config{
			AllowedPunctuation: viper.GetString("sanitize.allowed_punctuation"),
			MinLength:          viper.GetInt("sanitize.min_length"),
			MaxLength:          viper.GetInt("sanitize.max_length"),
			MaxWords:           viper.GetInt("sanitize.max_words"),
		}),
		gate.New(client, viper.GetFloat64("gate.threshold"), slog.Default()),
		extract.New(client, categories, nil, slog.Default()),
		pipeline.NewValidator(pipeline.ValidatorConfig{Policy: policy, Categories: categories}, nil),
		store,
		"telegram",
		slog.Default(),
	)

	webhookCfg := api.Config{
		ClientToken:     viper.GetString("webhook.client_token"),
		AllowedSenderID: viper.GetString("webhook.allowed_sender_id"),
	}
	if webhookCfg.ClientToken == "" {
		return errors.New("webhook.client_token is required")
	}
	if webhookCfg.AllowedSenderID == "" {
		return errors.New("webhook.allowed_sender_id is required")
	}

	server := api.NewServer(
		webhookCfg,
		p,
		store,
		messenger,
		api.NewMetrics(nil),
		nil,
		slog.Default(),
	)

	listen := viper.GetString("server.listen")
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("webhook server listening", "addr", listen)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		slog.Info("webhook server stopped")
		return nil
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
