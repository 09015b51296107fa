// Package llm - util.go provides shared response cleanup helpers.
package llm

import "strings"

// CleanJSONBlock strips a markdown code fence wrapped around a JSON
// response. Models fence JSON even when told not to; downstream parsing
// wants the bare document. Text without a fence passes through untouched.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	body := strings.TrimPrefix(text, "```")
	if strings.HasPrefix(body, "json") {
		body = strings.TrimPrefix(body, "json")
	} else if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		// Drop a language tag on the fence line. A brace or bracket there
		// means the document itself starts on that line, so keep it.
		lang := body[:idx]
		if len(lang) < 20 && !strings.ContainsAny(lang, " {[") {
			body = body[idx:]
		}
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
