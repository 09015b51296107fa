package llm

import (
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	assert.NoError(t, classifyError(nil))

	quota := classifyError(errors.New("googleapi: Error 429: Quota exceeded"))
	assert.ErrorIs(t, quota, ErrRateLimited)

	rate := classifyError(errors.New("Rate limit reached for model"))
	assert.ErrorIs(t, rate, ErrRateLimited)

	other := errors.New("connection reset by peer")
	assert.Equal(t, other, classifyError(other))
	assert.NotErrorIs(t, classifyError(other), ErrRateLimited)
}

func TestBlockedError(t *testing.T) {
	blocked := &genai.GenerateContentResponse{
		PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
	}
	assert.ErrorIs(t, blockedError(blocked), ErrContentBlocked)

	withheld := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}
	assert.ErrorIs(t, blockedError(withheld), ErrContentBlocked)

	ok := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}},
	}
	assert.NoError(t, blockedError(ok))
}
