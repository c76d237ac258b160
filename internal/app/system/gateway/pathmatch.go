package gateway

import "strings"

type matchKind int

const (
	matchExact    matchKind = iota // "/favicon.ico": equality
	matchPrefix                    // "/static/": prefix including the slash
	matchWildcard                  // "/auth/*": prefix up to and including the slash
)

// Pattern is one entry of a path list.
//
//	"/auth/*"      matches every path starting with "/auth/"
//	"/static/"     matches every path starting with "/static/"
//	"/favicon.ico" matches only "/favicon.ico"
type Pattern struct {
	raw    string
	kind   matchKind
	prefix string
}

// Compile parses a pattern.
func Compile(p string) Pattern {
	switch {
	case strings.HasSuffix(p, "/*"):
		return Pattern{raw: p, kind: matchWildcard, prefix: strings.TrimSuffix(p, "*")}
	case strings.HasSuffix(p, "/"):
		return Pattern{raw: p, kind: matchPrefix, prefix: p}
	default:
		return Pattern{raw: p, kind: matchExact, prefix: p}
	}
}

// Match reports whether path matches p.
func (p Pattern) Match(path string) bool {
	if p.kind == matchExact {
		return path == p.prefix
	}
	return strings.HasPrefix(path, p.prefix)
}

// String returns the pattern as written.
func (p Pattern) String() string { return p.raw }

// Matcher is an ordered list of patterns; a path matches if any pattern does.
type Matcher []Pattern

// NewMatcher compiles patterns.
func NewMatcher(patterns ...string) Matcher {
	m := make(Matcher, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		m = append(m, Compile(p))
	}
	return m
}

// Match reports whether any pattern matches path.
func (m Matcher) Match(path string) bool {
	for _, p := range m {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// DefaultPublicPaths are reachable without a session.
var DefaultPublicPaths = []string{
	"/auth/*",
	"/api/auth/*",
	"/public/*",
	"/favicon.ico",
	"/static/",
	"/assets/",
}

// DefaultPassThroughPaths bypass session handling entirely: static assets
// and operational endpoints.
var DefaultPassThroughPaths = []string{
	"/static/",
	"/assets/",
	"/favicon.ico",
	"/health",
	"/health/*",
	"/readyz",
	"/livez",
	"/metrics",
}
