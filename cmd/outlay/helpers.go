package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/mtrella/outlay/internal/config"
	"github.com/mtrella/outlay/internal/engine"
	"github.com/mtrella/outlay/internal/llm"
	"github.com/mtrella/outlay/internal/storage"
)

const defaultDBPath = "~/.local/share/outlay/outlay.db"

// initStorage opens the configured database and brings its schema up to
// date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// newLLMClient builds the configured gateway client.
func newLLMClient() (llm.Client, error) {
	cfg := llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
	}

	if cfg.Provider == "" {
		cfg.Provider = "anthropic"
	}
	if cfg.APIKey == "" {
		switch cfg.Provider {
		case "anthropic":
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "openai":
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	return llm.NewClient(cfg)
}

// newClassifier builds the orchestrator over the authoritative taxonomy
// from storage.
func newClassifier(ctx context.Context, store *storage.SQLiteStorage, gateway llm.Client) (*engine.Classifier, error) {
	categories, err := store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return engine.New(gateway, categories), nil
}
