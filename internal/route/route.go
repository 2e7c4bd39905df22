// Package route maps route hints to public path segments and extracts
// short codes from request paths. The tables here are pure data; in-app
// browser detection lives in the browser package.
package route

import (
	"math/rand"
	"regexp"
	"strings"
)

// Hint identifies one of the supported route styles for public URLs.
type Hint string

const (
	HintGo      Hint = "go"
	HintShare   Hint = "share"
	HintLink    Hint = "link"
	HintView    Hint = "view"
	HintArticle Hint = "article"
)

// DefaultHint is used when a creation request carries no route hint or an
// unknown one.
const DefaultHint = HintGo

// style holds the normal and compact spellings for one route hint.
// The compact spelling is selected for restrictive in-app browser
// contexts, where shorter and less recognizable paths travel better.
type style struct {
	hint    Hint
	normal  string
	compact string
}

// styles is ordered: code extraction tries prefixes in this order, so when
// multiple prefixes could structurally match, the earlier one wins.
var styles = []style{
	{HintGo, "go", "go"},
	{HintShare, "share", "s"},
	{HintLink, "link", "l"},
	{HintView, "view", "v"},
	{HintArticle, "article", "a"},
}

// extractors is the compiled prefix pattern list, in priority order.
var extractors = buildExtractors()

func buildExtractors() []*regexp.Regexp {
	var patterns []*regexp.Regexp
	seen := make(map[string]bool)
	for _, s := range styles {
		for _, seg := range []string{s.normal, s.compact} {
			if seen[seg] {
				continue
			}
			seen[seg] = true
			patterns = append(patterns, regexp.MustCompile(`/`+seg+`/([a-zA-Z0-9]+)`))
		}
	}
	return patterns
}

// Valid reports whether the hint names a known route style.
func Valid(h Hint) bool {
	for _, s := range styles {
		if s.hint == h {
			return true
		}
	}
	return false
}

// Normalize maps a raw client-supplied hint string to a known Hint,
// falling back to DefaultHint.
func Normalize(raw string) Hint {
	h := Hint(strings.ToLower(strings.TrimSpace(raw)))
	if Valid(h) {
		return h
	}
	return DefaultHint
}

// PathSegment returns the URL path segment for a hint, using the compact
// spelling when compact mode is requested.
func PathSegment(h Hint, compact bool) string {
	for _, s := range styles {
		if s.hint == h {
			if compact {
				return s.compact
			}
			return s.normal
		}
	}
	if compact {
		return styles[0].compact
	}
	return styles[0].normal
}

// Segments returns every path segment that resolution routes must serve,
// in extraction priority order.
func Segments() []string {
	segs := make([]string, 0, len(styles)*2)
	seen := make(map[string]bool)
	for _, s := range styles {
		for _, seg := range []string{s.normal, s.compact} {
			if !seen[seg] {
				seen[seg] = true
				segs = append(segs, seg)
			}
		}
	}
	return segs
}

// ExtractCode pulls the short code out of a request path. Known prefixes
// are tried in priority order; if none matches, the last path segment is
// used as a fallback. Returns "" when the path holds no candidate.
func ExtractCode(path string) string {
	for _, re := range extractors {
		if m := re.FindStringSubmatch(path); m != nil {
			return m[1]
		}
	}

	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// disguiseParams is a small fixed set of query parameters appended to
// public URLs to vary their shape. Purely cosmetic: resolution ignores
// any trailing query string.
var disguiseParams = []string{
	"from=timeline",
	"scene=home",
	"src=qr",
	"ref=share",
}

// PickDisguise returns one disguise query parameter, chosen
// pseudo-randomly.
func PickDisguise() string {
	return disguiseParams[rand.Intn(len(disguiseParams))]
}

// DisguiseParams returns the full disguise parameter set.
func DisguiseParams() []string {
	out := make([]string, len(disguiseParams))
	copy(out, disguiseParams)
	return out
}
