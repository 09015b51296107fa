// Package pipeline provides the high-level orchestration for a recommendation run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/minji/book-fairy/internal/audience"
	"github.com/minji/book-fairy/internal/candidates"
	"github.com/minji/book-fairy/internal/holdings"
	"github.com/minji/book-fairy/internal/llm"
	"github.com/minji/book-fairy/internal/narrative"
	"github.com/minji/book-fairy/internal/observability"
	"github.com/minji/book-fairy/internal/planner"
	"github.com/minji/book-fairy/internal/ranking"
	"github.com/minji/book-fairy/internal/selection"
	"github.com/minji/book-fairy/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Step names reported through ProgressEvent.
const (
	StepQueryPlan = "query_plan"
	StepSearch    = "search"
	StepHoldings  = "holdings"
	StepFilter    = "filter"
	StepRank      = "rank"
	StepShortlist = "shortlist"
	StepNarrative = "narrative"
	StepAdvice    = "advice"
)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Profile types.StudentProfile

	LLM      llm.Client          // required
	Searcher candidates.Searcher // required

	// Holdings is optional. A nil Finder skips holdings annotation and the
	// run proceeds with a warning; no book gets the holdings bonus.
	Holdings holdings.Finder

	Rules              ranking.Ruleset
	MaxRecommendations int
	ShortlistSize      int
	PerQueryResults    int

	Verbose    bool
	Out        io.Writer // progress output, defaults to os.Stdout
	OnProgress ProgressCallback

	// Now overrides the clock for recency scoring. Zero means time.Now().
	Now time.Time
}

// Result is the outcome of a pipeline run. Exactly one of Narrative or
// Advice is populated on success: Advice carries the fallback message when
// no candidates survived or the model payload was unusable.
type Result struct {
	Plan           types.QueryPlan
	Pool           []types.BookRecord
	Shortlist      []types.BookRecord
	Narrative *narrative.Narrative
	Advice    string
	// PickHoldings maps a recommendation's payload ISBN to its holdings
	// verification. An ISBN match is authoritative; a title/author match is
	// lower confidence and carries MatchTitleAuthor.
	PickHoldings   map[string]*holdings.Result
	SearchFailures []candidates.QueryFailure
	// Degraded is set when diversity selection fell back to rank order.
	Degraded bool
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Run orchestrates the full recommendation pipeline: plan queries, search,
// annotate holdings, filter, rank, shortlist, and generate the narrative.
func Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.LLM == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if opts.Searcher == nil {
		return nil, fmt.Errorf("book searcher is required")
	}
	if opts.Profile.Topic == "" {
		return nil, fmt.Errorf("student topic is required")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.MaxRecommendations <= 0 {
		opts.MaxRecommendations = 3
	}
	if opts.ShortlistSize <= 0 {
		opts.ShortlistSize = narrative.MaxPromptCandidates
	}

	printer := observability.NewPrinter(opts.Out)
	result := &Result{PickHoldings: make(map[string]*holdings.Result)}

	// Step 1: Query plan
	fmt.Fprintf(opts.Out, "Step 1/6: Planning search queries...\n")
	plan, err := planner.Plan(ctx, opts.LLM, opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("query planning failed: %w", err)
	}
	result.Plan = plan
	if opts.Verbose {
		printer.PrintQueryPlan(plan)
	}
	emitProgress(&opts, StepQueryPlan, fmt.Sprintf("Planned %d search queries", len(plan)), plan)

	// Step 2: Candidate search
	fmt.Fprintf(opts.Out, "Step 2/6: Searching for books (%d queries)...\n", len(plan))
	pool, failures, err := candidates.Aggregate(ctx, opts.Searcher, plan, candidates.Options{
		PerQuery: opts.PerQueryResults,
	})
	result.SearchFailures = failures
	if opts.Verbose {
		printer.PrintSearchFailures(failures)
	}
	if errors.Is(err, candidates.ErrNoCandidates) {
		return adviceFallback(ctx, &opts, result, "no search results")
	}
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}
	emitProgress(&opts, StepSearch, fmt.Sprintf("Found %d unique candidates", len(pool)), nil)

	// Step 3: Holdings annotation
	if opts.Holdings != nil {
		fmt.Fprintf(opts.Out, "Step 3/6: Checking library holdings...\n")
		for i := range pool {
			if err := holdings.Annotate(ctx, opts.Holdings, &pool[i]); err != nil {
				return nil, fmt.Errorf("holdings lookup failed: %w", err)
			}
		}
	} else {
		fmt.Fprintf(opts.Out, "Step 3/6: No holdings source configured, skipping library check...\n")
	}
	emitProgress(&opts, StepHoldings, "Annotated holdings", nil)

	// Step 4: Audience filter
	fmt.Fprintf(opts.Out, "Step 4/6: Filtering for reader level...\n")
	pool = audience.Filter(pool, opts.Profile.Tier, opts.Rules.Audience)
	if len(pool) == 0 {
		return adviceFallback(ctx, &opts, result, "no candidates after filtering")
	}
	emitProgress(&opts, StepFilter, fmt.Sprintf("%d candidates after filtering", len(pool)), nil)

	// Step 5: Rank and shortlist
	fmt.Fprintf(opts.Out, "Step 5/6: Ranking and shortlisting...\n")
	pool = ranking.Rank(pool, opts.Profile.Tier, opts.Now, opts.Rules)
	result.Pool = pool
	if opts.Verbose {
		printer.PrintCandidates(pool)
	}
	emitProgress(&opts, StepRank, "Ranked candidate pool", nil)

	sel := selection.Select(pool, opts.ShortlistSize)
	result.Shortlist = sel.Picks
	result.Degraded = sel.Degraded
	if sel.Degraded {
		fmt.Fprintf(opts.Out, "Warning: diversity selection degraded, using rank order\n")
	}
	emitProgress(&opts, StepShortlist, fmt.Sprintf("Shortlisted %d candidates", len(sel.Picks)), nil)

	// Step 6: Final narrative
	fmt.Fprintf(opts.Out, "Step 6/6: Asking for final recommendations...\n")
	story, err := narrative.Generate(ctx, opts.LLM, opts.Profile, sel.Picks)
	if err != nil {
		var payloadErr *narrative.PayloadError
		if errors.As(err, &payloadErr) {
			return adviceFallback(ctx, &opts, result, "unusable model payload")
		}
		return nil, fmt.Errorf("final selection failed: %w", err)
	}
	if len(story.Recommendations) == 0 {
		// The model wrote prose but named no books; treat it like no results.
		return adviceFallback(ctx, &opts, result, "empty model payload")
	}
	if len(story.Recommendations) > opts.MaxRecommendations {
		story.Recommendations = story.Recommendations[:opts.MaxRecommendations]
	}
	result.Narrative = story
	annotatePicks(ctx, &opts, result)
	if opts.Verbose {
		printer.PrintRecommendations(story.Recommendations, result.PickHoldings)
	}
	emitProgress(&opts, StepNarrative, fmt.Sprintf("Selected %d books", len(story.Recommendations)), nil)

	return result, nil
}

// adviceFallback generates the encouragement message used whenever the run
// cannot produce concrete picks. The partial result is still returned so the
// caller can show the plan and failures.
func adviceFallback(ctx context.Context, opts *RunOptions, result *Result, reason string) (*Result, error) {
	fmt.Fprintf(opts.Out, "No recommendations possible (%s), generating advice...\n", reason)
	advice, err := narrative.Advise(ctx, opts.LLM, opts.Profile, result.Plan)
	if err != nil {
		return nil, fmt.Errorf("advice generation failed: %w", err)
	}
	result.Advice = advice
	emitProgress(opts, StepAdvice, reason, nil)
	return result, nil
}

// annotatePicks verifies the model's picks against holdings so the final
// output can show call number and status for in-library books. An ISBN miss
// falls back to a title/author lookup, whose MatchTitleAuthor kind marks the
// annotation as lower confidence.
func annotatePicks(ctx context.Context, opts *RunOptions, result *Result) {
	if opts.Holdings == nil || result.Narrative == nil {
		return
	}
	for _, rec := range result.Narrative.Recommendations {
		if rec.ISBN == "" {
			continue
		}
		if res, err := opts.Holdings.FindByISBN(ctx, rec.ISBN); err == nil {
			result.PickHoldings[rec.ISBN] = res
			continue
		}
		if res, err := opts.Holdings.FindByTitleAuthor(ctx, rec.Title, rec.Author); err == nil {
			result.PickHoldings[rec.ISBN] = res
		}
	}
}
