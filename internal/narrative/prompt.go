// Package narrative drives the final LLM step: selecting up to three books
// from the shortlist and wrapping them in a friendly Korean message, plus the
// fallback advice message for empty searches.
package narrative

import (
	"fmt"
	"strings"

	"github.com/minji/book-fairy/internal/prompts"
	"github.com/minji/book-fairy/internal/types"
)

const (
	promptFile         = "recommend.json"
	selectionPromptKey = "final-selection"
	advicePromptKey    = "no-results-advice"

	// MaxPromptCandidates bounds how many shortlist entries reach the
	// prompt. Anything past this is noise for a pick-three task.
	MaxPromptCandidates = 7

	descriptionPreviewRunes = 200
)

// BuildSelectionPrompt renders the final selection prompt for a profile and
// a ranked shortlist. Only the first MaxPromptCandidates records are
// included; descriptions are truncated to a preview.
func BuildSelectionPrompt(profile types.StudentProfile, shortlist []types.BookRecord) (string, error) {
	template, err := prompts.Get(promptFile, selectionPromptKey)
	if err != nil {
		return "", fmt.Errorf("failed to load selection prompt: %w", err)
	}
	return prompts.Format(template, map[string]string{
		"Level":      orDefault(profile.ReadingLevel, "정보 없음"),
		"AgeGrade":   orDefault(profile.AgeGrade, "정보 없음"),
		"Topic":      profile.Topic,
		"Interests":  orDefault(profile.Interests, "특별히 없음"),
		"Candidates": formatCandidates(shortlist),
	}), nil
}

// BuildAdvicePrompt renders the no-results advice prompt, referencing the
// queries that came up empty.
func BuildAdvicePrompt(profile types.StudentProfile, plan types.QueryPlan) (string, error) {
	template, err := prompts.Get(promptFile, advicePromptKey)
	if err != nil {
		return "", fmt.Errorf("failed to load advice prompt: %w", err)
	}
	return prompts.Format(template, map[string]string{
		"Level":     orDefault(profile.ReadingLevel, "정보 없음"),
		"AgeGrade":  orDefault(profile.AgeGrade, "정보 없음"),
		"Topic":     profile.Topic,
		"Interests": orDefault(profile.Interests, "특별히 없음"),
		"Queries":   orDefault(strings.Join(plan, ", "), "없음"),
	}), nil
}

func formatCandidates(shortlist []types.BookRecord) string {
	if len(shortlist) == 0 {
		return "검색된 책 후보 없음."
	}

	blocks := make([]string, 0, MaxPromptCandidates)
	for i, rec := range shortlist {
		if i >= MaxPromptCandidates {
			break
		}
		year := "정보 없음"
		if y := rec.PublicationYear(); y > 0 {
			year = fmt.Sprintf("%d년", y)
		}
		isbn := rec.NormalizedISBN
		if isbn == "" {
			isbn = "정보 없음"
		}
		blocks = append(blocks, fmt.Sprintf(
			"  후보 %d:\n    제목: %s\n    저자: %s\n    출판사: %s\n    출판년도: %s\n    ISBN: %s\n    소개(요약): %s",
			i+1,
			orDefault(rec.Title, "정보 없음"),
			orDefault(rec.AuthorLine(), "정보 없음"),
			orDefault(rec.Publisher, "정보 없음"),
			year,
			isbn,
			previewDescription(rec.Description),
		))
	}
	return strings.Join(blocks, "\n\n")
}

func previewDescription(desc string) string {
	if desc == "" {
		return "정보 없음"
	}
	runes := []rune(desc)
	if len(runes) <= descriptionPreviewRunes {
		return desc
	}
	return string(runes[:descriptionPreviewRunes]) + "..."
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
