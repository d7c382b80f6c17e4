// Package sanitize neutralizes HTML in user-supplied free text before it is
// stored. Every write path runs through the same policy; fields are rendered
// back into HTML contexts, so unsanitized input is a stored XSS vector.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips unsafe markup from free-text fields.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New returns a sanitizer with the UGC policy: basic formatting survives,
// scripts, event handlers and embeds do not. The policy parses and
// re-serializes, so applying it repeatedly does not double-escape.
func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

// Clean sanitizes a single field. Empty input passes through unchanged.
func (s *Sanitizer) Clean(text string) string {
	if text == "" {
		return ""
	}
	return s.policy.Sanitize(text)
}

// CleanTrimmed trims surrounding whitespace then sanitizes.
func (s *Sanitizer) CleanTrimmed(text string) string {
	return s.Clean(strings.TrimSpace(text))
}
