package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minji/book-fairy/internal/llm"
	"github.com/minji/book-fairy/internal/schemas"
)

// Delimiters the model is instructed to wrap its JSON payload in. Marker
// parsing keeps the surrounding prose usable even when the JSON is not.
const (
	PayloadStartMarker = "BOOKS_JSON_START"
	PayloadEndMarker   = "BOOKS_JSON_END"
)

// recommendationSchema validates the delimited payload before it is trusted.
const recommendationSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["title", "author", "year", "isbn", "reason"],
		"properties": {
			"title": {"type": "string"},
			"author": {"type": "string"},
			"year": {"type": "string"},
			"isbn": {"type": "string"},
			"reason": {"type": "string"}
		}
	}
}`

// Recommendation is one picked book as reported by the model.
type Recommendation struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   string `json:"year"`
	ISBN   string `json:"isbn"`
	Reason string `json:"reason"`
}

// Narrative is a fully parsed model response: the prose around the payload
// plus the picks themselves. Recommendations may be empty when the model
// declined to pick and wrote advice into the prose instead.
type Narrative struct {
	Intro           string
	Outro           string
	Recommendations []Recommendation
}

// PayloadError reports an unusable payload. Raw carries the full model
// response so callers can still show the prose to the user.
type PayloadError struct {
	Raw   string
	Cause error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("unusable recommendation payload: %v", e.Cause)
}

func (e *PayloadError) Unwrap() error {
	return e.Cause
}

// Parse extracts the intro, delimited JSON payload and outro from a raw
// model response. Markdown fences inside the markers are tolerated. A
// missing marker, malformed JSON or schema violation yields a *PayloadError.
func Parse(text string) (*Narrative, error) {
	start := strings.Index(text, PayloadStartMarker)
	if start < 0 {
		return nil, &PayloadError{Raw: text, Cause: fmt.Errorf("start marker %q not found", PayloadStartMarker)}
	}
	rest := text[start+len(PayloadStartMarker):]
	end := strings.Index(rest, PayloadEndMarker)
	if end < 0 {
		return nil, &PayloadError{Raw: text, Cause: fmt.Errorf("end marker %q not found", PayloadEndMarker)}
	}

	payload := llm.CleanJSONBlock(rest[:end])
	if err := schemas.ValidateJSONString(recommendationSchema, payload); err != nil {
		return nil, &PayloadError{Raw: text, Cause: err}
	}

	var recs []Recommendation
	if err := json.Unmarshal([]byte(payload), &recs); err != nil {
		return nil, &PayloadError{Raw: text, Cause: fmt.Errorf("failed to decode payload: %w", err)}
	}

	return &Narrative{
		Intro:           strings.TrimSpace(text[:start]),
		Outro:           strings.TrimSpace(rest[end+len(PayloadEndMarker):]),
		Recommendations: recs,
	}, nil
}
