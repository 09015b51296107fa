// Package isbn canonicalizes book identifiers so that ISBN-10 and ISBN-13
// values are comparable regardless of which form a data source chose.
package isbn

import (
	"strings"
	"unicode"
)

// Clean strips everything except digits and the checksum character 'X' from
// a raw identifier and uppercases it. Returns "" for empty input.
// Clean is idempotent.
func Clean(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		switch {
		case unicode.IsDigit(r):
			sb.WriteRune(r)
		case r == 'X' || r == 'x':
			sb.WriteByte('X')
		}
	}
	return sb.String()
}

// To13 converts a cleaned ISBN-10 to its ISBN-13 form using the standard
// weighted (1,3,1,3,...) modulo-10 check digit over "978" + the first nine
// digits. Returns "" when the input is not exactly 10 cleaned characters or
// its first nine characters are not digits.
func To13(isbn10 string) string {
	c := Clean(isbn10)
	if len(c) != 10 {
		return ""
	}
	body := "978" + c[:9]
	sum := 0
	for i := 0; i < len(body); i++ {
		d := int(body[i] - '0')
		if d < 0 || d > 9 {
			return ""
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	check := (10 - sum%10) % 10
	return body + string(rune('0'+check))
}

// To10 converts a cleaned "978"-prefixed ISBN-13 back to ISBN-10 using the
// weighted (10,9,...,2) modulo-11 check digit, mapping remainder 10 to 'X'
// and 11 to '0'. Returns "" on length or prefix mismatch.
func To10(isbn13 string) string {
	c := Clean(isbn13)
	if len(c) != 13 || !strings.HasPrefix(c, "978") {
		return ""
	}
	body := c[3:12]
	sum := 0
	for i := 0; i < 9; i++ {
		d := int(body[i] - '0')
		if d < 0 || d > 9 {
			return ""
		}
		sum += (10 - i) * d
	}
	remainder := 11 - sum%11
	var check byte
	switch remainder {
	case 10:
		check = 'X'
	case 11:
		check = '0'
	default:
		check = byte('0' + remainder)
	}
	return body + string(check)
}

// AllVersions returns every comparable form of a raw identifier: each
// whitespace-separated token cleaned, plus its opposite-length counterpart
// where convertible. The result is empty when the input cleans to nothing.
func AllVersions(raw string) map[string]struct{} {
	versions := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ReplaceAll(raw, "-", " ")) {
		c := Clean(token)
		if c == "" {
			continue
		}
		versions[c] = struct{}{}
		switch len(c) {
		case 10:
			if v := To13(c); v != "" {
				versions[v] = struct{}{}
			}
		case 13:
			if v := To10(c); v != "" {
				versions[v] = struct{}{}
			}
		}
	}
	return versions
}

// Matches reports whether two raw identifiers denote the same book under any
// ISBN-10/13 form. Symmetric by construction.
func Matches(a, b string) bool {
	va := AllVersions(a)
	if len(va) == 0 {
		return false
	}
	for v := range AllVersions(b) {
		if _, ok := va[v]; ok {
			return true
		}
	}
	return false
}

// Canonical picks the single identifier the pipeline keys on: the cleaned
// 13-digit token if the raw field contains one, else the 10-digit token,
// else the first cleaned token. Idempotent; "" when no token survives.
func Canonical(raw string) string {
	var first, ten, thirteen string
	for _, token := range strings.Fields(strings.ReplaceAll(raw, "-", " ")) {
		c := Clean(token)
		if c == "" {
			continue
		}
		if first == "" {
			first = c
		}
		switch len(c) {
		case 13:
			if thirteen == "" {
				thirteen = c
			}
		case 10:
			if ten == "" {
				ten = c
			}
		}
	}
	if thirteen != "" {
		return thirteen
	}
	if ten != "" {
		return ten
	}
	return first
}

// textStripSet is the fixed punctuation stripped by NormalizeText.
const textStripSet = " \t .,:;!?'\"`·-—()[]{}<>"

// NormalizeText lowercases a title/author/publisher string and strips a
// fixed set of punctuation and whitespace for fuzzy comparison. Never used
// for identifier matching.
func NormalizeText(s string) string {
	lower := strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(textStripSet, r) {
			return -1
		}
		return r
	}, lower)
}
