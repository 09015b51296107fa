package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minji/book-fairy/internal/llm"
	"github.com/minji/book-fairy/internal/types"
)

type stubClient struct {
	response string
	err      error
	prompt   string
}

func (s *stubClient) GenerateText(_ context.Context, prompt string, _ llm.ModelTier, _ float32) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func (s *stubClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier, _ float32) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func (s *stubClient) GetModel(llm.ModelTier) string { return "stub" }
func (s *stubClient) Close() error                  { return nil }

func TestParsePlanStripsMarkdown(t *testing.T) {
	raw := "* 해양 오염 문제\n\n## 플라스틱 오염 영향\n바다 생물 보호\n"
	plan := ParsePlan(raw)
	assert.Equal(t, types.QueryPlan{"해양 오염 문제", "플라스틱 오염 영향", "바다 생물 보호"}, plan)
}

func TestParsePlanDedupesAndCaps(t *testing.T) {
	lines := []string{
		"해양 오염", "해양 오염", "기후 변화", "탄소 중립", "재생 에너지",
		"생물 다양성", "미세 플라스틱", "환경 정의",
	}
	plan := ParsePlan(strings.Join(lines, "\n"))
	require.Len(t, plan, MaxQueries)
	assert.Equal(t, "해양 오염", plan[0])
	assert.NotContains(t, plan, "환경 정의")
}

func TestParsePlanEmptyInput(t *testing.T) {
	assert.Empty(t, ParsePlan(""))
	assert.Empty(t, ParsePlan("   \n\t\n***\n"))
}

func TestBuildPromptFillsProfile(t *testing.T) {
	profile := types.StudentProfile{
		ReadingLevel: "또래보다 빠른 편",
		AgeGrade:     "초등학교 5학년",
		Topic:        "해양 생태계",
		Genres:       []string{"과학", "탐험"},
		Interests:    "미세 플라스틱",
		LikedBooks:   []string{"시튼 동물기"},
	}
	prompt, err := BuildPrompt(profile)
	require.NoError(t, err)
	assert.Contains(t, prompt, "해양 생태계")
	assert.Contains(t, prompt, "과학, 탐험")
	assert.Contains(t, prompt, "시튼 동물기")
	assert.NotContains(t, prompt, "{{.")
}

func TestBuildPromptDefaultsEmptyFields(t *testing.T) {
	prompt, err := BuildPrompt(types.StudentProfile{Topic: "우주"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "특별히 없음")
	assert.Contains(t, prompt, "언급된 책 없음")
}

func TestPlan(t *testing.T) {
	client := &stubClient{response: "해양 오염 문제\n바다 생물 보호"}
	plan, err := Plan(context.Background(), client, types.StudentProfile{Topic: "해양 오염"})
	require.NoError(t, err)
	assert.Equal(t, types.QueryPlan{"해양 오염 문제", "바다 생물 보호"}, plan)
	assert.Contains(t, client.prompt, "해양 오염")
}

func TestPlanModelError(t *testing.T) {
	client := &stubClient{err: errors.New("boom")}
	_, err := Plan(context.Background(), client, types.StudentProfile{Topic: "우주"})
	assert.Error(t, err)
}

func TestPlanNoUsableQueries(t *testing.T) {
	client := &stubClient{response: "***\n   "}
	_, err := Plan(context.Background(), client, types.StudentProfile{Topic: "우주"})
	assert.Error(t, err)
}
