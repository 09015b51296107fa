// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/minji/book-fairy/internal/candidates"
	"github.com/minji/book-fairy/internal/holdings"
	"github.com/minji/book-fairy/internal/narrative"
	"github.com/minji/book-fairy/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintQueryPlan outputs the generated search queries.
func (p *Printer) PrintQueryPlan(plan types.QueryPlan) {
	if len(plan) == 0 {
		return
	}

	var sb strings.Builder
	for i, query := range plan {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, query))
	}

	p.printBox("SEARCH QUERY PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidates outputs a summary of the candidate pool: size, holdings
// coverage and the top records in pool order.
func (p *Printer) PrintCandidates(pool []types.BookRecord) {
	if len(pool) == 0 {
		return
	}

	held := 0
	for _, rec := range pool {
		if rec.InHoldings {
			held++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates: %d (%d in holdings)\n\n", len(pool), held))

	count := min(len(pool), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := pool[i]
		marker := " "
		if rec.InHoldings {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s [%3d] %s", marker, rec.Score, rec.Title))
		if rec.Publisher != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", rec.Publisher))
		}
		sb.WriteString("\n")
	}
	if len(pool) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(pool)-maxItemsToShow))
	}

	p.printBox("CANDIDATE POOL", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSearchFailures outputs per-query search failures, if any.
func (p *Printer) PrintSearchFailures(failures []candidates.QueryFailure) {
	if len(failures) == 0 {
		return
	}

	var sb strings.Builder
	for _, f := range failures {
		sb.WriteString(fmt.Sprintf("%s: %v\n", f.Query, f.Err))
	}

	p.printBox("SEARCH FAILURES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs the final picks with call number and status
// for the ones verified against holdings. A title/author match is marked as
// an estimate since the payload ISBN did not resolve.
func (p *Printer) PrintRecommendations(recs []narrative.Recommendation, picks map[string]*holdings.Result) {
	if len(recs) == 0 {
		return
	}

	var sb strings.Builder
	for i, rec := range recs {
		status := ""
		if res := picks[rec.ISBN]; res != nil {
			status = fmt.Sprintf(" [소장 %s %s", res.Record.CallNumber, res.Record.Status)
			if res.Match == types.MatchTitleAuthor {
				status += " (제목/저자 추정)"
			}
			status += "]"
		}
		sb.WriteString(fmt.Sprintf("%d. %s / %s (%s)%s\n", i+1, rec.Title, rec.Author, rec.Year, status))
	}

	p.printBox("FINAL RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}
