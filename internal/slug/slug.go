// Package slug derives URL-safe project identifiers from titles.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// Fallback is used when a title reduces to nothing.
	Fallback = "untitled"

	maxLen = 255
)

// deaccent strips combining marks after NFD decomposition, so that
// "Café München" folds to "Cafe Munchen" before slugification.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make turns a title into a lowercase hyphen-separated slug containing
// only [a-z0-9-], with no leading, trailing, or repeated hyphens. An
// empty or whitespace-only title maps to Fallback.
func Make(title string) string {
	folded, _, err := transform.String(deaccent, title)
	if err != nil {
		folded = title
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	s := strings.TrimRight(b.String(), "-")
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	if s == "" {
		return Fallback
	}
	return s
}

// Registry tracks the slugs produced in one import run and
// disambiguates collisions with a numeric suffix (-2, -3, ...).
// It is an explicit per-run value, not shared state.
type Registry struct {
	seen map[string]bool
}

// NewRegistry returns an empty per-run slug registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]bool)}
}

// Unique returns the slug for title, guaranteed distinct from every
// slug previously returned by this registry.
func (r *Registry) Unique(title string) string {
	base := Make(title)
	s := base
	for n := 2; r.seen[s]; n++ {
		s = base + "-" + strconv.Itoa(n)
	}
	r.seen[s] = true
	return s
}
