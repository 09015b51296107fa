package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minji/book-fairy/internal/config"
	"github.com/minji/book-fairy/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for recommendations and holdings management.`,
	RunE:  runServe,
}

var (
	serveConfigPath  string
	serveAddr        string
	serveDatabaseURL string
	serveHoldingsCSV string
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, e.g. :8080")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL for holdings (optional, defaults to DATABASE_URL env var)")
	serveCmd.Flags().StringVar(&serveHoldingsCSV, "holdings-csv", "", "Path to a holdings CSV export (used when no database is configured)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}
	if cmd.Flags().Changed("addr") {
		cfg.ServerAddr = serveAddr
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDatabaseURL
	}
	if cmd.Flags().Changed("holdings-csv") {
		cfg.HoldingsCSV = serveHoldingsCSV
	}
	cfg = cfg.MergeWithDefaults(config.DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return err
	}

	llmClient, err := newLLMClient(ctx, &cfg)
	if err != nil {
		return err
	}
	defer func() { _ = llmClient.Close() }()

	searcher, err := newSearcher(&cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := openHoldings(ctx, &cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	srv, err := server.New(server.Config{
		Addr:               cfg.ServerAddr,
		LLM:                llmClient,
		Searcher:           searcher,
		Holdings:           store,
		Rules:              cfg.Ruleset(),
		MaxRecommendations: cfg.MaxRecommendations,
		ShortlistSize:      cfg.ShortlistSize,
		PerQueryResults:    cfg.PerQueryResults,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
