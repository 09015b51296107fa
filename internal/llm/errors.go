package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// Sentinel errors callers can match with errors.Is to pick a recovery path.
var (
	// ErrRateLimited marks provider quota or rate-limit rejections.
	ErrRateLimited = errors.New("llm: rate limited")
	// ErrContentBlocked marks responses withheld by the provider's safety
	// filters.
	ErrContentBlocked = errors.New("llm: content blocked")
)

// classifyError wraps provider errors with a sentinel where the failure mode
// is recognizable. The Gemini SDK surfaces quota failures as plain errors, so
// detection is by message.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") || strings.Contains(msg, "429") {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return err
}

// blockedError inspects a response for safety blocks and returns an
// ErrContentBlocked wrap, or nil when the response is usable.
func blockedError(resp *genai.GenerateContentResponse) error {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return fmt.Errorf("%w: prompt blocked (%v)", ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return fmt.Errorf("%w: candidate withheld for safety", ErrContentBlocked)
	}
	return nil
}
