// Package sanitize strips markup from free-text fields before they reach
// the presence and message services.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes every HTML tag and trims surrounding whitespace.
// Entities escaped by the policy are decoded back so that "a & b" is kept as typed.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// OptionalText sanitizes a value that may be absent.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := Text(*s)
	return &v
}
