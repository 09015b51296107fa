package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minji/book-fairy/internal/llm"
	"github.com/minji/book-fairy/internal/schemas"
	"github.com/minji/book-fairy/internal/types"
)

const sampleResponse = `얍얍! ✨ 도도가 요정의 가루를 뿌려 책들을 찾아왔어요!
BOOKS_JSON_START
[
  {
    "title": "바다의 비밀",
    "author": "김바다",
    "year": "2024년",
    "isbn": "9788996991342",
    "reason": "해양 생태계를 쉽게 풀어낸 책이에요."
  }
]
BOOKS_JSON_END
즐거운 독서 되세요!`

func TestParseExtractsProseAndPayload(t *testing.T) {
	n, err := Parse(sampleResponse)
	require.NoError(t, err)
	assert.Contains(t, n.Intro, "도도가 요정의 가루를")
	assert.Equal(t, "즐거운 독서 되세요!", n.Outro)
	require.Len(t, n.Recommendations, 1)
	assert.Equal(t, "바다의 비밀", n.Recommendations[0].Title)
	assert.Equal(t, "9788996991342", n.Recommendations[0].ISBN)
}

func TestParseToleratesMarkdownFence(t *testing.T) {
	fenced := strings.Replace(sampleResponse, "BOOKS_JSON_START\n", "BOOKS_JSON_START\n```json\n", 1)
	fenced = strings.Replace(fenced, "\nBOOKS_JSON_END", "\n```\nBOOKS_JSON_END", 1)
	n, err := Parse(fenced)
	require.NoError(t, err)
	require.Len(t, n.Recommendations, 1)
}

func TestParseEmptyArrayIsAdvice(t *testing.T) {
	text := "이런, 마땅한 책이 없네요.\nBOOKS_JSON_START\n[]\nBOOKS_JSON_END\n대신 이런 키워드를 시도해보세요."
	n, err := Parse(text)
	require.NoError(t, err)
	assert.Empty(t, n.Recommendations)
	assert.Contains(t, n.Intro, "마땅한 책이")
	assert.Contains(t, n.Outro, "키워드")
}

func TestParseMissingMarkers(t *testing.T) {
	_, err := Parse("그냥 인사만 하는 답변입니다.")
	var payloadErr *PayloadError
	require.ErrorAs(t, err, &payloadErr)
	assert.Equal(t, "그냥 인사만 하는 답변입니다.", payloadErr.Raw)

	_, err = Parse("BOOKS_JSON_START\n[]")
	require.ErrorAs(t, err, &payloadErr)
}

func TestParseSchemaViolation(t *testing.T) {
	text := "BOOKS_JSON_START\n[{\"title\": \"책\"}]\nBOOKS_JSON_END"
	_, err := Parse(text)
	var payloadErr *PayloadError
	require.ErrorAs(t, err, &payloadErr)

	var validationErr *schemas.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestParseMalformedJSON(t *testing.T) {
	text := "BOOKS_JSON_START\n[{not json\nBOOKS_JSON_END"
	_, err := Parse(text)
	var payloadErr *PayloadError
	assert.ErrorAs(t, err, &payloadErr)
}

func TestBuildSelectionPromptCapsCandidates(t *testing.T) {
	shortlist := make([]types.BookRecord, 0, 10)
	for i := 0; i < 10; i++ {
		shortlist = append(shortlist, types.BookRecord{
			Title:          "책",
			Authors:        []string{"저자"},
			NormalizedISBN: "9788996991342",
		})
	}
	prompt, err := BuildSelectionPrompt(types.StudentProfile{Topic: "우주"}, shortlist)
	require.NoError(t, err)
	assert.Contains(t, prompt, "후보 7:")
	assert.NotContains(t, prompt, "후보 8:")
	assert.NotContains(t, prompt, "{{.")
}

func TestBuildSelectionPromptTruncatesDescription(t *testing.T) {
	long := strings.Repeat("가", 250)
	shortlist := []types.BookRecord{{Title: "책", Description: long}}
	prompt, err := BuildSelectionPrompt(types.StudentProfile{Topic: "우주"}, shortlist)
	require.NoError(t, err)
	assert.Contains(t, prompt, strings.Repeat("가", 200)+"...")
	assert.NotContains(t, prompt, strings.Repeat("가", 201))
}

func TestBuildSelectionPromptEmptyShortlist(t *testing.T) {
	prompt, err := BuildSelectionPrompt(types.StudentProfile{Topic: "우주"}, nil)
	require.NoError(t, err)
	assert.Contains(t, prompt, "검색된 책 후보 없음.")
}

func TestBuildAdvicePromptIncludesQueries(t *testing.T) {
	prompt, err := BuildAdvicePrompt(
		types.StudentProfile{Topic: "해양 오염"},
		types.QueryPlan{"해양 오염 문제", "바다 생물 보호"},
	)
	require.NoError(t, err)
	assert.Contains(t, prompt, "해양 오염 문제, 바다 생물 보호")
	assert.NotContains(t, prompt, "{{.")
}

type stubClient struct {
	response string
	err      error
}

func (s *stubClient) GenerateText(context.Context, string, llm.ModelTier, float32) (string, error) {
	return s.response, s.err
}

func (s *stubClient) GenerateJSON(context.Context, string, llm.ModelTier, float32) (string, error) {
	return s.response, s.err
}

func (s *stubClient) GetModel(llm.ModelTier) string { return "stub" }
func (s *stubClient) Close() error                  { return nil }

func TestGenerate(t *testing.T) {
	client := &stubClient{response: sampleResponse}
	n, err := Generate(context.Background(), client, types.StudentProfile{Topic: "바다"}, nil)
	require.NoError(t, err)
	require.Len(t, n.Recommendations, 1)
}

func TestGenerateModelError(t *testing.T) {
	client := &stubClient{err: errors.New("boom")}
	_, err := Generate(context.Background(), client, types.StudentProfile{Topic: "바다"}, nil)
	assert.Error(t, err)
}

func TestAdvise(t *testing.T) {
	client := &stubClient{response: "새로운 키워드를 시도해보세요!"}
	advice, err := Advise(context.Background(), client, types.StudentProfile{Topic: "바다"}, nil)
	require.NoError(t, err)
	assert.Contains(t, advice, "키워드")
}
