package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minji/book-fairy/internal/config"
	"github.com/minji/book-fairy/internal/observability"
	"github.com/minji/book-fairy/internal/planner"
)

var planQueriesCmd = &cobra.Command{
	Use:   "plan-queries",
	Short: "Plan search queries for a student profile",
	Long:  "Runs only the query-planning step and prints the resulting search queries. Useful for checking what the model does with a profile before spending search and selection calls.",
	RunE:  runPlanQueries,
}

func init() {
	planQueriesCmd.Flags().StringVarP(&recTopic, "topic", "t", "", "Topic or theme the student wants to read about (required)")
	planQueriesCmd.Flags().StringVar(&recLevel, "level", "", "Reading level description")
	planQueriesCmd.Flags().StringVar(&recAgeGrade, "age-grade", "", "Age or school grade")
	planQueriesCmd.Flags().StringVar(&recTier, "tier", "", "Audience tier: elementary, middle, high or unspecified")
	planQueriesCmd.Flags().StringSliceVar(&recGenres, "genres", nil, "Preferred genres")
	planQueriesCmd.Flags().StringVar(&recInterests, "interests", "", "Other interests")
	planQueriesCmd.Flags().StringSliceVar(&recLikedBooks, "liked-books", nil, "Books the student already enjoyed")
	planQueriesCmd.Flags().StringVar(&recAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(planQueriesCmd)
}

func runPlanQueries(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	profile, err := buildProfile()
	if err != nil {
		return err
	}

	cfg := config.Config{GeminiAPIKey: recAPIKey}
	llmClient, err := newLLMClient(ctx, &cfg)
	if err != nil {
		return err
	}
	defer func() { _ = llmClient.Close() }()

	plan, err := planner.Plan(ctx, llmClient, profile)
	if err != nil {
		return fmt.Errorf("query planning failed: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintQueryPlan(plan)
	return nil
}
