// Package sanitize normalises free-text input before it reaches the store.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Maximum lengths applied to sanitized fields.
const (
	DefaultMaxLen = 500
	ContentMaxLen = 1000
)

// blocked is the fixed character set stripped from every free-text field.
const blocked = `<>"'%;()&+`

var policy = bluemonday.StrictPolicy()

// Text strips blocked characters and HTML markup, truncates to maxLen runes
// and trims surrounding whitespace. Empty input stays empty.
func Text(input string, maxLen int) string {
	if input == "" {
		return ""
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(blocked, r) {
			return -1
		}
		return r
	}, input)

	cleaned = policy.Sanitize(cleaned)

	runes := []rune(cleaned)
	if len(runes) > maxLen {
		cleaned = string(runes[:maxLen])
	}

	return strings.TrimSpace(cleaned)
}

// Content applies the longer limit used for question bodies.
func Content(input string) string {
	return Text(input, ContentMaxLen)
}
