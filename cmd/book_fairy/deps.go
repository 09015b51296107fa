package main

import (
	"context"
	"fmt"
	"os"

	"github.com/minji/book-fairy/internal/config"
	"github.com/minji/book-fairy/internal/holdings"
	"github.com/minji/book-fairy/internal/kakao"
	"github.com/minji/book-fairy/internal/llm"
	"github.com/minji/book-fairy/internal/ratelimit"
	"github.com/minji/book-fairy/internal/server"
)

// newLLMClient builds the text-generation client, falling back to the
// GEMINI_API_KEY environment variable when no key was configured.
func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	apiKey := cfg.GeminiAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	return llm.NewClient(ctx, llm.DefaultGeminiConfig(), apiKey)
}

// newSearcher builds the Kakao book search client with a client-side rate
// limiter sized from config.
func newSearcher(cfg *config.Config) (*kakao.Client, error) {
	apiKey := cfg.KakaoAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("KAKAO_REST_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("KAKAO_REST_API_KEY environment variable or --kakao-key flag is required")
	}
	rpm := cfg.KakaoRPM
	if rpm <= 0 {
		rpm = config.DefaultConfig().KakaoRPM
	}
	return kakao.NewClient(apiKey, &kakao.Options{
		Limiter: ratelimit.NewPerMinute("kakao book search", rpm),
	})
}

// openHoldings opens the configured holdings source, in preference order:
// the Postgres store when a database URL is set, else an in-memory store
// seeded from the holdings CSV, else no store at all. The returned cleanup
// func is always safe to call.
func openHoldings(ctx context.Context, cfg *config.Config) (server.HoldingsStore, func(), error) {
	noop := func() {}

	databaseURL := cfg.DatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL != "" {
		store, err := holdings.Connect(ctx, databaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to holdings database: %w", err)
		}
		return store, store.Close, nil
	}

	if cfg.HoldingsCSV != "" {
		records, err := holdings.LoadCSVFile(cfg.HoldingsCSV)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to load holdings CSV: %w", err)
		}
		store := holdings.NewMemoryStore()
		if _, err := store.ReplaceAll(ctx, records); err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	}

	return nil, noop, nil
}
