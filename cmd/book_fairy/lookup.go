package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minji/book-fairy/internal/config"
	"github.com/minji/book-fairy/internal/holdings"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Check whether a book is in the library's holdings",
	Long:  "Looks a single book up in the configured holdings source, by ISBN when one is given (any 10 or 13 digit form matches) or by title and author otherwise.",
	RunE:  runLookup,
}

var (
	lookupISBN        string
	lookupTitle       string
	lookupAuthor      string
	lookupDatabaseURL string
	lookupCSVPath     string
)

func init() {
	lookupCmd.Flags().StringVar(&lookupISBN, "isbn", "", "ISBN to look up")
	lookupCmd.Flags().StringVar(&lookupTitle, "title", "", "Title to look up when no ISBN is given")
	lookupCmd.Flags().StringVar(&lookupAuthor, "author", "", "Author to narrow a title lookup")
	lookupCmd.Flags().StringVar(&lookupDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	lookupCmd.Flags().StringVar(&lookupCSVPath, "holdings-csv", "", "Path to a holdings CSV export (used when no database is configured)")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	if lookupISBN == "" && lookupTitle == "" {
		return fmt.Errorf("either --isbn or --title is required")
	}

	cfg := config.Config{DatabaseURL: lookupDatabaseURL, HoldingsCSV: lookupCSVPath}
	store, closeStore, err := openHoldings(ctx, &cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	if store == nil {
		return fmt.Errorf("no holdings source configured (set DATABASE_URL or --holdings-csv)")
	}

	var result *holdings.Result
	if lookupISBN != "" {
		result, err = store.FindByISBN(ctx, lookupISBN)
	} else {
		result, err = store.FindByTitleAuthor(ctx, lookupTitle, lookupAuthor)
	}
	if errors.Is(err, holdings.ErrNotFound) {
		fmt.Println("Not in holdings.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("In holdings (%s match): %s", result.Match, result.Record.Title)
	if result.Record.Author != "" {
		fmt.Printf(" / %s", result.Record.Author)
	}
	fmt.Println()
	if result.Record.CallNumber != "" {
		fmt.Printf("Call number: %s\n", result.Record.CallNumber)
	}
	if result.Record.Status != "" {
		fmt.Printf("Status: %s\n", result.Record.Status)
	}
	return nil
}
