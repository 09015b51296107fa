package audience

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minji/book-fairy/internal/types"
)

func TestFilterUnspecifiedPassesThrough(t *testing.T) {
	pool := []types.BookRecord{
		{Title: "양자역학 개론", Publisher: "민음사"},
		{Title: "아기 그림책", Publisher: "보림"},
	}
	got := Filter(pool, types.TierUnspecified, DefaultRules())
	assert.Equal(t, pool, got)

	// A zero-value tier behaves the same as an explicit unspecified one.
	got = Filter(pool, "", DefaultRules())
	assert.Equal(t, pool, got)
}

func TestFilterElementaryFailsClosed(t *testing.T) {
	pool := []types.BookRecord{
		// No child evidence anywhere. Must be dropped.
		{Title: "양자역학 개론", Publisher: "민음사"},
		// Children's imprint is sufficient on its own.
		{Title: "바다 탐험", Publisher: "비룡소"},
		// Child keyword in the title.
		{Title: "초등 과학 실험", Publisher: "민음사"},
		// Child keyword only in the description.
		{Title: "별자리 이야기", Publisher: "민음사", Description: "어린이를 위한 천문학 입문서"},
	}
	got := Filter(pool, types.TierElementary, DefaultRules())
	require.Len(t, got, 3)
	assert.Equal(t, "바다 탐험", got[0].Title)
	assert.Equal(t, "초등 과학 실험", got[1].Title)
	assert.Equal(t, "별자리 이야기", got[2].Title)
}

func TestFilterElementaryAdultKeywordForcesExclusion(t *testing.T) {
	pool := []types.BookRecord{
		// Children's imprint, but the description targets adults.
		{Title: "물리학 산책", Publisher: "시공주니어", Description: "대학생을 위한 교양 물리"},
		// Child keyword in title does not rescue an adult description either.
		{Title: "어린이도 읽는 경제학", Publisher: "민음사", Description: "전문가를 위한 심화 해설 포함"},
	}
	got := Filter(pool, types.TierElementary, DefaultRules())
	assert.Empty(t, got)
}

func TestFilterMiddleHighFailsOpen(t *testing.T) {
	pool := []types.BookRecord{
		// No markers at all: passes.
		{Title: "데미안", Publisher: "민음사"},
		// Children's imprint without a teen keyword: dropped.
		{Title: "숲 속 친구들", Publisher: "비룡소"},
		// Children's imprint rescued by a teen keyword in the title.
		{Title: "청소년을 위한 과학사", Publisher: "비룡소"},
		// Picture-book marker in the title: dropped.
		{Title: "잘 자요 그림책", Publisher: "민음사"},
		// Elementary marker without an upper-grade qualifier: dropped.
		{Title: "초등 수학 완성", Publisher: "민음사"},
		// Elementary marker with an upper-grade qualifier: passes.
		{Title: "초등 고학년 문해력", Publisher: "민음사"},
	}
	for _, tier := range []types.AudienceTier{types.TierMiddle, types.TierHigh} {
		got := Filter(pool, tier, DefaultRules())
		require.Len(t, got, 3, "tier %s", tier)
		assert.Equal(t, "데미안", got[0].Title)
		assert.Equal(t, "청소년을 위한 과학사", got[1].Title)
		assert.Equal(t, "초등 고학년 문해력", got[2].Title)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	pool := []types.BookRecord{
		{Title: "양자역학 개론", Publisher: "민음사"},
		{Title: "바다 탐험", Publisher: "비룡소"},
	}
	_ = Filter(pool, types.TierElementary, DefaultRules())
	assert.Equal(t, "양자역학 개론", pool[0].Title)
	assert.Equal(t, "바다 탐험", pool[1].Title)
}

func TestNormalizePublisher(t *testing.T) {
	assert.Equal(t, "비룡소", NormalizePublisher("비룡소(주)"))
	assert.Equal(t, "munhakdongne", NormalizePublisher("  MunhakDongne "))
	assert.Equal(t, "", NormalizePublisher("   "))
}

func TestIsChildrensImprint(t *testing.T) {
	rules := DefaultRules()
	assert.True(t, rules.IsChildrensImprint("비룡소"))
	assert.True(t, rules.IsChildrensImprint("비룡소(주)"))
	assert.False(t, rules.IsChildrensImprint("민음사"))
	assert.False(t, rules.IsChildrensImprint(""))
}
