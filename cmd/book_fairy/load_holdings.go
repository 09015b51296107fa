package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minji/book-fairy/internal/holdings"
)

var loadHoldingsCmd = &cobra.Command{
	Use:   "load-holdings",
	Short: "Load a holdings CSV export into the database",
	Long:  "Parses a CSV export of the library's holdings and replaces the holdings table with its records. The CSV needs at least isbn and title columns; rows without a title are skipped.",
	RunE:  runLoadHoldings,
}

var (
	loadCSVPath     string
	loadDatabaseURL string
)

func init() {
	loadHoldingsCmd.Flags().StringVar(&loadCSVPath, "csv", "", "Path to the holdings CSV export (required)")
	loadHoldingsCmd.Flags().StringVar(&loadDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	if err := loadHoldingsCmd.MarkFlagRequired("csv"); err != nil {
		panic(fmt.Sprintf("failed to mark csv flag as required: %v", err))
	}

	rootCmd.AddCommand(loadHoldingsCmd)
}

func runLoadHoldings(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := loadDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	records, err := holdings.LoadCSVFile(loadCSVPath)
	if err != nil {
		return fmt.Errorf("failed to load holdings CSV: %w", err)
	}

	store, err := holdings.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to holdings database: %w", err)
	}
	defer store.Close()

	count, err := store.ReplaceAll(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to replace holdings: %w", err)
	}

	fmt.Printf("Loaded %d holdings records from %s\n", count, loadCSVPath)
	return nil
}
