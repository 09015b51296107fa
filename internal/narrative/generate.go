package narrative

import (
	"context"
	"fmt"

	"github.com/minji/book-fairy/internal/llm"
	"github.com/minji/book-fairy/internal/types"
)

const (
	// The selection step wants some warmth for the recommendation prose.
	selectionTemperature = 0.4
	// Advice is pure prose and can run warmer still.
	adviceTemperature = 0.5
)

// Generate runs the final selection step: prompt the model with the profile
// and shortlist, then parse the delimited response. A *PayloadError from
// parsing passes through so callers can salvage the prose.
func Generate(ctx context.Context, client llm.Client, profile types.StudentProfile, shortlist []types.BookRecord) (*Narrative, error) {
	prompt, err := BuildSelectionPrompt(profile, shortlist)
	if err != nil {
		return nil, err
	}

	raw, err := client.GenerateText(ctx, prompt, llm.TierAdvanced, selectionTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate final selection: %w", err)
	}

	return Parse(raw)
}

// Advise generates the encouragement-and-new-keywords message shown when no
// candidates survived the search.
func Advise(ctx context.Context, client llm.Client, profile types.StudentProfile, plan types.QueryPlan) (string, error) {
	prompt, err := BuildAdvicePrompt(profile, plan)
	if err != nil {
		return "", err
	}

	advice, err := client.GenerateText(ctx, prompt, llm.TierLite, adviceTemperature)
	if err != nil {
		return "", fmt.Errorf("failed to generate advice: %w", err)
	}
	return advice, nil
}
