package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minji/book-fairy/internal/config"
	"github.com/minji/book-fairy/internal/holdings"
	"github.com/minji/book-fairy/internal/llm"
	"github.com/minji/book-fairy/internal/ranking"
	"github.com/minji/book-fairy/internal/types"
)

const selectionResponse = `도도가 찾아왔어요!
BOOKS_JSON_START
[
  {
    "title": "바다의 비밀",
    "author": "김바다",
    "year": "2024년",
    "isbn": "9788996991342",
    "reason": "해양 생태계 입문에 맞는 책이에요."
  }
]
BOOKS_JSON_END
즐거운 독서 되세요!`

// scriptedLLM answers the query-plan call first, then the selection call.
type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) GenerateText(context.Context, string, llm.ModelTier, float32) (string, error) {
	resp := s.responses[min(s.calls, len(s.responses)-1)]
	s.calls++
	return resp, nil
}

func (s *scriptedLLM) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier, temp float32) (string, error) {
	return s.GenerateText(ctx, prompt, tier, temp)
}

func (s *scriptedLLM) GetModel(llm.ModelTier) string { return "stub" }
func (s *scriptedLLM) Close() error                  { return nil }

type stubSearcher struct {
	results map[string][]types.BookRecord
}

func (s *stubSearcher) Search(_ context.Context, query string, _ int) ([]types.BookRecord, error) {
	return s.results[query], nil
}

const testAdminPassword = "dodo-the-librarian"

func setupTestServer(t *testing.T, store HoldingsStore) *Server {
	t.Helper()

	passwords := &config.PasswordConfig{BcryptCost: 10}
	hash, err := passwords.HashPassword(testAdminPassword)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "test-secret-key-for-jwt-signing-minimum-32-bytes")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("PASSWORD_PEPPER", "")
	t.Setenv("ADMIN_USERNAME", "librarian")
	t.Setenv("ADMIN_PASSWORD_HASH", hash)
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	srv, err := New(Config{
		LLM: &scriptedLLM{responses: []string{"해양 생태계", selectionResponse}},
		Searcher: &stubSearcher{results: map[string][]types.BookRecord{
			"해양 생태계": {
				{Title: "바다의 비밀", Authors: []string{"김바다"}, Publisher: "창비",
					NormalizedISBN: "9788996991342", Description: "바다 생물 이야기"},
				{Title: "플라스틱 행성", Authors: []string{"이강"}, Publisher: "민음사",
					NormalizedISBN: "9788937460777", Description: "플라스틱 오염 문제"},
			},
		}},
		Holdings: store,
		Rules:    ranking.DefaultRuleset(),
	})
	require.NoError(t, err)
	return srv
}

func seededStore(t *testing.T) *holdings.MemoryStore {
	t.Helper()
	store := holdings.NewMemoryStore()
	_, err := store.ReplaceAll(context.Background(), []holdings.Record{
		{ISBN: "8996991341", Title: "바다의 비밀", Author: "김바다", CallNumber: "472.5", Status: "소장중"},
	})
	require.NoError(t, err)
	return store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, srv *Server) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/auth/login", LoginRequest{
		Username: "librarian",
		Password: testAdminPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	srv := setupTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm client is required")
}

func TestLogin(t *testing.T) {
	srv := setupTestServer(t, nil)

	t.Run("valid credentials", func(t *testing.T) {
		token := loginToken(t, srv)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/auth/login", LoginRequest{
			Username: "librarian",
			Password: "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong username", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/auth/login", LoginRequest{
			Username: "intruder",
			Password: testAdminPassword,
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/auth/login", LoginRequest{
			Username: "librarian",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHoldingsLookup(t *testing.T) {
	srv := setupTestServer(t, seededStore(t))

	t.Run("by isbn cross form", func(t *testing.T) {
		// The store carries the ISBN-10; lookup by the ISBN-13 form.
		rec := doJSON(t, srv, http.MethodGet, "/holdings/lookup?isbn=9788996991342", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HoldingsLookupResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Found)
		require.NotNil(t, resp.Record)
		assert.Equal(t, "바다의 비밀", resp.Record.Title)
		assert.Equal(t, "472.5", resp.Record.CallNumber)
	})

	t.Run("by title and author", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/holdings/lookup?title=바다의%20비밀&author=김바다", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HoldingsLookupResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Found)
		assert.Equal(t, types.MatchTitleAuthor, resp.MatchKind)
	})

	t.Run("not held", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/holdings/lookup?isbn=9780306406157", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no query parameters", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/holdings/lookup", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no store configured", func(t *testing.T) {
		bare := setupTestServer(t, nil)
		rec := doJSON(t, bare, http.MethodGet, "/holdings/lookup?isbn=9788996991342", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHoldingsStats(t *testing.T) {
	srv := setupTestServer(t, seededStore(t))

	rec := doJSON(t, srv, http.MethodGet, "/holdings/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestHoldingsReload(t *testing.T) {
	const csvBody = "isbn,title,author,call_number\n9788937460777,플라스틱 행성,이강,539.9\n"

	t.Run("requires token", func(t *testing.T) {
		srv := setupTestServer(t, seededStore(t))
		req := httptest.NewRequest(http.MethodPost, "/holdings/reload", strings.NewReader(csvBody))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects bad token", func(t *testing.T) {
		srv := setupTestServer(t, seededStore(t))
		req := httptest.NewRequest(http.MethodPost, "/holdings/reload", strings.NewReader(csvBody))
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("replaces records", func(t *testing.T) {
		store := seededStore(t)
		srv := setupTestServer(t, store)
		token := loginToken(t, srv)

		req := httptest.NewRequest(http.MethodPost, "/holdings/reload", strings.NewReader(csvBody))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"loaded":1`)

		// Old record is gone, new one resolves.
		lookup := doJSON(t, srv, http.MethodGet, "/holdings/lookup?isbn=9788996991342", nil)
		assert.Equal(t, http.StatusNotFound, lookup.Code)
		lookup = doJSON(t, srv, http.MethodGet, "/holdings/lookup?isbn=9788937460777", nil)
		assert.Equal(t, http.StatusOK, lookup.Code)
	})

	t.Run("malformed csv", func(t *testing.T) {
		srv := setupTestServer(t, seededStore(t))
		token := loginToken(t, srv)

		req := httptest.NewRequest(http.MethodPost, "/holdings/reload", strings.NewReader("call_number\n123\n"))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecommend(t *testing.T) {
	srv := setupTestServer(t, seededStore(t))

	rec := doJSON(t, srv, http.MethodPost, "/recommend", RecommendRequest{
		Topic:    "해양 생태계",
		AgeGrade: "초등학교 5학년",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"해양 생태계"}, resp.Queries)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "바다의 비밀", resp.Recommendations[0].Title)
	assert.True(t, resp.Recommendations[0].InHoldings)
	assert.Equal(t, "472.5", resp.Recommendations[0].CallNumber)
	assert.Equal(t, "소장중", resp.Recommendations[0].Status)
	assert.Equal(t, types.MatchISBN, resp.Recommendations[0].MatchKind)
	assert.Empty(t, resp.Advice)
}

func TestRecommendValidation(t *testing.T) {
	srv := setupTestServer(t, nil)

	t.Run("missing topic", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/recommend", RecommendRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Topic")
	})

	t.Run("unknown tier", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/recommend", RecommendRequest{
			Topic: "우주",
			Tier:  "kindergarten",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecommendStream(t *testing.T) {
	srv := setupTestServer(t, seededStore(t))

	body, err := json.Marshal(RecommendRequest{Topic: "해양 생태계", AgeGrade: "초등학교 5학년"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/recommend/stream", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	out := rec.Body.String()
	assert.Contains(t, out, "event: progress")
	assert.Contains(t, out, "event: result")
	assert.Contains(t, out, `"status":"ok"`)
}
