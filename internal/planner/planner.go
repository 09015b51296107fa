// Package planner turns a student profile into a short list of book search
// queries via the LLM.
package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/minji/book-fairy/internal/llm"
	"github.com/minji/book-fairy/internal/prompts"
	"github.com/minji/book-fairy/internal/types"
)

const (
	// MaxQueries caps the plan regardless of how chatty the model gets.
	MaxQueries = 6

	promptFile = "recommend.json"
	promptKey  = "search-queries"

	// Query generation wants near-deterministic output.
	queryTemperature = 0.1
)

// BuildPrompt renders the search query generation prompt for a profile.
func BuildPrompt(profile types.StudentProfile) (string, error) {
	template, err := prompts.Get(promptFile, promptKey)
	if err != nil {
		return "", fmt.Errorf("failed to load query prompt: %w", err)
	}
	return prompts.Format(template, map[string]string{
		"Level":      orDefault(profile.ReadingLevel, "정보 없음"),
		"AgeGrade":   orDefault(profile.AgeGrade, "정보 없음"),
		"Topic":      profile.Topic,
		"Genres":     orDefault(strings.Join(profile.Genres, ", "), "특별히 없음"),
		"Interests":  orDefault(profile.Interests, "특별히 없음"),
		"LikedBooks": orDefault(strings.Join(profile.LikedBooks, ", "), "언급된 책 없음"),
	}), nil
}

// ParsePlan extracts search queries from a raw model response. Each
// non-empty line becomes one query after markdown bullet and heading
// characters are stripped. Duplicates are dropped keeping first occurrence,
// and the plan is capped at MaxQueries.
func ParsePlan(raw string) types.QueryPlan {
	seen := make(map[string]struct{})
	plan := make(types.QueryPlan, 0, MaxQueries)
	for _, line := range strings.Split(raw, "\n") {
		query := strings.TrimSpace(line)
		query = strings.ReplaceAll(query, "*", "")
		query = strings.ReplaceAll(query, "#", "")
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		if _, dup := seen[query]; dup {
			continue
		}
		seen[query] = struct{}{}
		plan = append(plan, query)
		if len(plan) == MaxQueries {
			break
		}
	}
	return plan
}

// Plan asks the model for search queries and parses the response.
// Returns an error when the model yields no usable query.
func Plan(ctx context.Context, client llm.Client, profile types.StudentProfile) (types.QueryPlan, error) {
	prompt, err := BuildPrompt(profile)
	if err != nil {
		return nil, err
	}

	raw, err := client.GenerateText(ctx, prompt, llm.TierLite, queryTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate search queries: %w", err)
	}

	plan := ParsePlan(raw)
	if len(plan) == 0 {
		return nil, fmt.Errorf("model returned no usable search queries")
	}
	return plan, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
