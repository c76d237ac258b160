// Package htmlsanitize strips markup from free text before it is forwarded
// to the backend (supplier names, notes, purposes and similar fields).
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text removes every HTML element from s and returns plain text.
// Entities are decoded, so "Arroz &amp; Feijão" becomes "Arroz & Feijão".
func Text(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<>&") {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(html.UnescapeString(getPolicy().Sanitize(s)))
}

// TextPtr is Text for optional fields. nil stays nil; a value that is
// empty after stripping becomes nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := Text(*s)
	if t == "" {
		return nil
	}
	return &t
}
