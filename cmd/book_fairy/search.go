package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minji/book-fairy/internal/candidates"
	"github.com/minji/book-fairy/internal/config"
	"github.com/minji/book-fairy/internal/observability"
	"github.com/minji/book-fairy/internal/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]...",
	Short: "Search for book candidates without running the pipeline",
	Long:  "Runs the given queries against the book search service, merges and deduplicates the results the same way the pipeline does, and prints the pool.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var (
	searchPerQuery int
	searchKakaoKey string
)

func init() {
	searchCmd.Flags().IntVar(&searchPerQuery, "per-query", 0, "Search results fetched per query")
	searchCmd.Flags().StringVar(&searchKakaoKey, "kakao-key", "", "Kakao REST API key (optional, defaults to KAKAO_REST_API_KEY env var)")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.KakaoAPIKey = searchKakaoKey
	if searchPerQuery > 0 {
		cfg.PerQueryResults = searchPerQuery
	}

	searcher, err := newSearcher(&cfg)
	if err != nil {
		return err
	}

	pool, failures, err := candidates.Aggregate(ctx, searcher, types.QueryPlan(args), candidates.Options{
		PerQuery: cfg.PerQueryResults,
	})
	printer := observability.NewPrinter(os.Stdout)
	printer.PrintSearchFailures(failures)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printer.PrintCandidates(pool)
	return nil
}
