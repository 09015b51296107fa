package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minji/book-fairy/internal/config"
	"github.com/minji/book-fairy/internal/observability"
	"github.com/minji/book-fairy/internal/pipeline"
	"github.com/minji/book-fairy/internal/types"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run the full recommendation pipeline for one student",
	Long: `Runs the whole pipeline end-to-end: query planning -> book search -> holdings check -> audience filter -> ranking -> diversity shortlist -> final narrative.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runRecommend,
}

var (
	recConfigPath  string
	recTopic       string
	recLevel       string
	recAgeGrade    string
	recTier        string
	recGenres      []string
	recInterests   string
	recDislikes    string
	recLikedBooks  []string
	recMax         int
	recShortlist   int
	recPerQuery    int
	recAPIKey      string
	recKakaoKey    string
	recKakaoRPM    int
	recDatabaseURL string
	recHoldingsCSV string
	recVerbose     bool
)

func init() {
	// Config file flag (processed first)
	recommendCmd.Flags().StringVar(&recConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	recommendCmd.Flags().StringVarP(&recTopic, "topic", "t", "", "Topic or theme the student wants to read about (required)")
	recommendCmd.Flags().StringVar(&recLevel, "level", "", "Reading level description")
	recommendCmd.Flags().StringVar(&recAgeGrade, "age-grade", "", "Age or school grade, e.g. '초등학교 5학년'")
	recommendCmd.Flags().StringVar(&recTier, "tier", "", "Audience tier: elementary, middle, high or unspecified")
	recommendCmd.Flags().StringSliceVar(&recGenres, "genres", nil, "Preferred genres")
	recommendCmd.Flags().StringVar(&recInterests, "interests", "", "Other interests")
	recommendCmd.Flags().StringVar(&recDislikes, "dislikes", "", "Things the student dislikes")
	recommendCmd.Flags().StringSliceVar(&recLikedBooks, "liked-books", nil, "Books the student already enjoyed")
	recommendCmd.Flags().IntVar(&recMax, "max-recommendations", 0, "Number of final picks")
	recommendCmd.Flags().IntVar(&recShortlist, "shortlist", 0, "Candidates offered to the model")
	recommendCmd.Flags().IntVar(&recPerQuery, "per-query", 0, "Search results fetched per query")
	recommendCmd.Flags().IntVar(&recKakaoRPM, "kakao-rpm", 0, "Kakao request ceiling per minute")
	recommendCmd.Flags().BoolVarP(&recVerbose, "verbose", "v", false, "Print detailed debug information")

	// API keys can be passed as flags, or read from env vars
	recommendCmd.Flags().StringVar(&recAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	recommendCmd.Flags().StringVar(&recKakaoKey, "kakao-key", "", "Kakao REST API key (optional, defaults to KAKAO_REST_API_KEY env var)")

	recommendCmd.Flags().StringVar(&recDatabaseURL, "db-url", "", "PostgreSQL connection URL for holdings (optional, defaults to DATABASE_URL env var)")
	recommendCmd.Flags().StringVar(&recHoldingsCSV, "holdings-csv", "", "Path to a holdings CSV export (used when no database is configured)")

	rootCmd.AddCommand(recommendCmd)
}

// recommendConfig merges the config file, CLI overrides and defaults, in
// that priority order.
func recommendConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if recConfigPath != "" {
		loadedCfg, err := config.LoadConfig(recConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
		if recVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", recConfigPath)
		}
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("api-key") {
		cfg.GeminiAPIKey = recAPIKey
	}
	if cmd.Flags().Changed("kakao-key") {
		cfg.KakaoAPIKey = recKakaoKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = recDatabaseURL
	}
	if cmd.Flags().Changed("holdings-csv") {
		cfg.HoldingsCSV = recHoldingsCSV
	}
	if cmd.Flags().Changed("max-recommendations") {
		cfg.MaxRecommendations = recMax
	}
	if cmd.Flags().Changed("shortlist") {
		cfg.ShortlistSize = recShortlist
	}
	if cmd.Flags().Changed("per-query") {
		cfg.PerQueryResults = recPerQuery
	}
	if cmd.Flags().Changed("kakao-rpm") {
		cfg.KakaoRPM = recKakaoRPM
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = recVerbose
	}

	cfg = cfg.MergeWithDefaults(config.DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildProfile assembles the student profile from the profile flags.
func buildProfile() (types.StudentProfile, error) {
	if recTopic == "" {
		return types.StudentProfile{}, fmt.Errorf("--topic is required")
	}
	tier, err := types.ParseAudienceTier(recTier)
	if err != nil {
		return types.StudentProfile{}, err
	}
	return types.StudentProfile{
		ReadingLevel: recLevel,
		AgeGrade:     recAgeGrade,
		Tier:         tier,
		Topic:        recTopic,
		Genres:       recGenres,
		Interests:    recInterests,
		Dislikes:     recDislikes,
		LikedBooks:   recLikedBooks,
	}, nil
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := recommendConfig(cmd)
	if err != nil {
		return err
	}

	profile, err := buildProfile()
	if err != nil {
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

	opts := pipeline.RunOptions{
		Profile:            profile,
		LLM:                llmClient,
		Searcher:           searcher,
		Rules:              cfg.Ruleset(),
		MaxRecommendations: cfg.MaxRecommendations,
		ShortlistSize:      cfg.ShortlistSize,
		PerQueryResults:    cfg.PerQueryResults,
		Verbose:            cfg.Verbose,
		Out:                os.Stdout,
	}
	if store != nil {
		opts.Holdings = store
	}

	result, err := pipeline.Run(ctx, opts)
	if err != nil {
		return err
	}

	printResult(result, cfg.Verbose)
	return nil
}

// printResult renders the final outcome. The verbose pipeline already
// printed the picks, so only the prose is repeated in that mode.
func printResult(result *pipeline.Result, verbose bool) {
	fmt.Println()
	if result.Narrative == nil {
		if result.Advice != "" {
			fmt.Println(result.Advice)
		}
		return
	}

	if result.Narrative.Intro != "" {
		fmt.Println(result.Narrative.Intro)
		fmt.Println()
	}
	if !verbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintRecommendations(result.Narrative.Recommendations, result.PickHoldings)
	}
	if result.Narrative.Outro != "" {
		fmt.Println(result.Narrative.Outro)
	}
}
