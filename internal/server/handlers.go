package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/minji/book-fairy/internal/holdings"
	"github.com/minji/book-fairy/internal/llm"
	"github.com/minji/book-fairy/internal/narrative"
	"github.com/minji/book-fairy/internal/pipeline"
	"github.com/minji/book-fairy/internal/types"
)

// RecommendRequest represents the request body for /recommend
type RecommendRequest struct {
	ReadingLevel       string   `json:"reading_level"`
	AgeGrade           string   `json:"age_grade"`
	Tier               string   `json:"tier" validate:"omitempty,oneof=unspecified elementary middle high"`
	Topic              string   `json:"topic" validate:"required"`
	Genres             []string `json:"genres,omitempty" validate:"max=10"`
	Interests          string   `json:"interests,omitempty"`
	Dislikes           string   `json:"dislikes,omitempty"`
	LikedBooks         []string `json:"liked_books,omitempty" validate:"max=20"`
	MaxRecommendations int      `json:"max_recommendations,omitempty" validate:"omitempty,min=1,max=7"`
}

// profile converts the request into the pipeline's input shape.
func (req *RecommendRequest) profile() (types.StudentProfile, error) {
	tier, err := types.ParseAudienceTier(req.Tier)
	if err != nil {
		return types.StudentProfile{}, &ErrValidation{Field: "tier", Message: err.Error()}
	}
	return types.StudentProfile{
		ReadingLevel: req.ReadingLevel,
		AgeGrade:     req.AgeGrade,
		Tier:         tier,
		Topic:        req.Topic,
		Genres:       req.Genres,
		Interests:    req.Interests,
		Dislikes:     req.Dislikes,
		LikedBooks:   req.LikedBooks,
	}, nil
}

// RecommendedBook is one pick in the /recommend response. CallNumber,
// Status and MatchKind are filled for picks verified against holdings;
// a title_author match kind means the payload ISBN did not resolve and the
// annotation is lower confidence.
type RecommendedBook struct {
	Title      string          `json:"title"`
	Author     string          `json:"author"`
	Year       string          `json:"year"`
	ISBN       string          `json:"isbn"`
	Reason     string          `json:"reason"`
	InHoldings bool            `json:"in_holdings"`
	CallNumber string          `json:"call_number,omitempty"`
	Status     string          `json:"status,omitempty"`
	MatchKind  types.MatchKind `json:"match_kind,omitempty"`
}

// SearchFailure reports one search query that failed during aggregation.
type SearchFailure struct {
	Query string `json:"query"`
	Error string `json:"error"`
}

// RecommendResponse represents the response for /recommend
type RecommendResponse struct {
	Queries         []string          `json:"queries"`
	Intro           string            `json:"intro,omitempty"`
	Recommendations []RecommendedBook `json:"recommendations"`
	Outro           string            `json:"outro,omitempty"`
	Advice          string            `json:"advice,omitempty"`
	Degraded        bool              `json:"degraded,omitempty"`
	SearchFailures  []SearchFailure   `json:"search_failures,omitempty"`
}

// handleRecommend runs the full recommendation pipeline for one profile
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.decodeRecommend(w, r)
	if !ok {
		return
	}

	result, err := pipeline.Run(r.Context(), opts)
	if err != nil {
		s.errorResponse(w, statusForRunError(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, buildRecommendResponse(result))
}

// handleRecommendStream runs the pipeline and streams progress via SSE
func (s *Server) handleRecommendStream(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.decodeRecommend(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts.OnProgress = func(event pipeline.ProgressEvent) {
		sse.WriteEvent("progress", event) //nolint:errcheck
	}

	result, err := pipeline.Run(r.Context(), opts)
	if err != nil {
		sse.WriteError(err.Error())
		sse.WriteComplete("failed")
		return
	}

	sse.WriteEvent("result", buildRecommendResponse(result)) //nolint:errcheck
	sse.WriteComplete("ok")
}

// decodeRecommend parses and validates the request body and assembles the
// pipeline options. On failure it writes the error response and returns
// ok=false.
func (s *Server) decodeRecommend(w http.ResponseWriter, r *http.Request) (pipeline.RunOptions, bool) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return pipeline.RunOptions{}, false
	}

	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return pipeline.RunOptions{}, false
	}

	profile, err := req.profile()
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return pipeline.RunOptions{}, false
	}

	maxRecs := req.MaxRecommendations
	if maxRecs == 0 {
		maxRecs = s.cfg.MaxRecommendations
	}

	return pipeline.RunOptions{
		Profile:            profile,
		LLM:                s.cfg.LLM,
		Searcher:           s.cfg.Searcher,
		Holdings:           s.holdingsFinder(),
		Rules:              s.cfg.Rules,
		MaxRecommendations: maxRecs,
		ShortlistSize:      s.cfg.ShortlistSize,
		PerQueryResults:    s.cfg.PerQueryResults,
		Out:                io.Discard,
	}, true
}

// statusForRunError maps pipeline failures to HTTP status codes. Upstream
// quota exhaustion surfaces as 429 so clients know to back off rather than
// retry immediately.
func statusForRunError(err error) int {
	if errors.Is(err, llm.ErrRateLimited) {
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func buildRecommendResponse(result *pipeline.Result) RecommendResponse {
	resp := RecommendResponse{
		Queries:  result.Plan,
		Advice:   result.Advice,
		Degraded: result.Degraded,
	}
	if result.Narrative != nil {
		resp.Intro = result.Narrative.Intro
		resp.Outro = result.Narrative.Outro
		resp.Recommendations = make([]RecommendedBook, 0, len(result.Narrative.Recommendations))
		for _, rec := range result.Narrative.Recommendations {
			resp.Recommendations = append(resp.Recommendations, toRecommendedBook(rec, result.PickHoldings[rec.ISBN]))
		}
	}
	for _, failure := range result.SearchFailures {
		sf := SearchFailure{Query: failure.Query}
		if failure.Err != nil {
			sf.Error = failure.Err.Error()
		}
		resp.SearchFailures = append(resp.SearchFailures, sf)
	}
	return resp
}

func toRecommendedBook(rec narrative.Recommendation, pick *holdings.Result) RecommendedBook {
	book := RecommendedBook{
		Title:  rec.Title,
		Author: rec.Author,
		Year:   rec.Year,
		ISBN:   rec.ISBN,
		Reason: rec.Reason,
	}
	if pick != nil {
		book.InHoldings = true
		book.CallNumber = pick.Record.CallNumber
		book.Status = pick.Record.Status
		book.MatchKind = pick.Match
	}
	return book
}

// HoldingsLookupResponse represents the response for /holdings/lookup
type HoldingsLookupResponse struct {
	Found     bool             `json:"found"`
	MatchKind types.MatchKind  `json:"match_kind,omitempty"`
	Record    *holdings.Record `json:"record,omitempty"`
}

// handleHoldingsLookup checks whether a single book is in the library
func (s *Server) handleHoldingsLookup(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Holdings == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "holdings data not loaded")
		return
	}

	isbn := r.URL.Query().Get("isbn")
	title := r.URL.Query().Get("title")
	author := r.URL.Query().Get("author")

	var (
		result *holdings.Result
		err    error
	)
	switch {
	case isbn != "":
		result, err = s.cfg.Holdings.FindByISBN(r.Context(), isbn)
	case title != "":
		result, err = s.cfg.Holdings.FindByTitleAuthor(r.Context(), title, author)
	default:
		verr := &ErrValidation{Field: "isbn", Message: "either isbn or title query parameter is required"}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}
	switch {
	case errors.Is(err, holdings.ErrNotFound):
		s.jsonResponse(w, http.StatusNotFound, HoldingsLookupResponse{Found: false})
		return
	case errors.Is(err, holdings.ErrInvalidQuery):
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, HoldingsLookupResponse{
		Found:     true,
		MatchKind: result.Match,
		Record:    &result.Record,
	})
}

// handleHoldingsReload replaces the holdings table from an uploaded CSV.
// Protected by JWT auth; see the route wiring in New.
func (s *Server) handleHoldingsReload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Holdings == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "holdings store not configured")
		return
	}

	records, err := holdings.LoadCSV(r.Body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid holdings CSV: "+err.Error())
		return
	}

	count, err := s.cfg.Holdings.ReplaceAll(r.Context(), records)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("holdings reloaded: %d records", count)
	s.jsonResponse(w, http.StatusOK, map[string]int{"loaded": count})
}

// handleHoldingsStats reports how many holdings records are loaded
func (s *Server) handleHoldingsStats(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Holdings == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "holdings data not loaded")
		return
	}

	count, err := s.cfg.Holdings.Count(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]int{"count": count})
}
