// Package sanitize cleans user-supplied text before it is stored. Meeting
// titles are plain text, so every tag is stripped with bluemonday's strict
// policy and the result is unescaped back to the characters the user typed;
// templates escape on output.
package sanitize

import (
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text strips all HTML from input, drops control characters (the title
// field is single-line, newlines included), collapses runs of whitespace
// and trims the result.
func Text(input string) string {
	if input == "" {
		return ""
	}
	stripped := html.UnescapeString(getPolicy().Sanitize(input))

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, stripped)
	return strings.Join(strings.Fields(cleaned), " ")
}
