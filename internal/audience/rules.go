// Package audience prunes candidates grossly mismatched to the requested
// reader tier before the expensive scoring and selection steps. This is a
// cheap keyword heuristic, not a classifier: false positives and negatives
// are expected and acceptable.
package audience

import "strings"

// Rules is the data-driven keyword/imprint table the filter runs on.
// Supplied through configuration so the heuristics can be extended without
// touching control flow.
type Rules struct {
	// ChildrensImprints holds normalized publisher names known to publish
	// for elementary readers.
	ChildrensImprints []string `json:"childrens_imprints,omitempty"`
	// ChildKeywords mark titles/descriptions aimed at elementary readers.
	ChildKeywords []string `json:"child_keywords,omitempty"`
	// AdultKeywords in a description force exclusion for elementary readers
	// regardless of any other evidence.
	AdultKeywords []string `json:"adult_keywords,omitempty"`
	// TeenKeywords signal middle/high suitability and override the
	// children's markers below.
	TeenKeywords []string `json:"teen_keywords,omitempty"`
	// PictureBookMarkers in a title exclude a record for middle/high
	// readers unless a teen keyword is also present.
	PictureBookMarkers []string `json:"picture_book_markers,omitempty"`
	// ElementaryMarkers in a title exclude for middle/high readers unless
	// an upper-grade or teen keyword is present.
	ElementaryMarkers []string `json:"elementary_markers,omitempty"`
	// UpperGradeMarkers rescue elementary-marked titles for older readers.
	UpperGradeMarkers []string `json:"upper_grade_markers,omitempty"`
}

// DefaultRules returns the built-in Korean-market keyword tables.
func DefaultRules() Rules {
	return Rules{
		ChildrensImprints: []string{
			"비룡소", "국민서관", "웅진주니어", "웅진씽크빅", "계림북스", "계몽사",
			"바람의아이들", "내 인생의 책", "시공주니어", "창비어린이", "길벗어린이",
			"사계절아이들", "한울림어린이", "보림",
		},
		ChildKeywords: []string{"어린이", "초등", "동화", "키즈"},
		AdultKeywords: []string{"대학생을 위한", "성인 독자를 위한", "전문가를 위한"},
		TeenKeywords: []string{
			"청소년", "중학생", "고등학생", "십대", "10대", "수험", "교과 연계",
		},
		PictureBookMarkers: []string{"그림책", "유아", "아기", "돌잡이"},
		ElementaryMarkers:  []string{"초등", "어린이"},
		UpperGradeMarkers:  []string{"고학년"},
	}
}

// NormalizePublisher strips a parenthesized suffix, trims and lowercases a
// publisher name so imprint membership checks survive labels like
// "비룡소(주)".
func NormalizePublisher(publisher string) string {
	if i := strings.IndexByte(publisher, '('); i >= 0 {
		publisher = publisher[:i]
	}
	return strings.ToLower(strings.TrimSpace(publisher))
}

// IsChildrensImprint reports whether the publisher normalizes into the
// children's imprint set.
func (r Rules) IsChildrensImprint(publisher string) bool {
	normalized := NormalizePublisher(publisher)
	if normalized == "" {
		return false
	}
	for _, imprint := range r.ChildrensImprints {
		if NormalizePublisher(imprint) == normalized {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
