package search

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lowerer is created per call because a cases.Caser is not safe for concurrent use.
type lowerer struct {
	c cases.Caser
}

func newLowerer() *lowerer {
	return &lowerer{c: cases.Lower(language.Und)}
}

func (l *lowerer) lower(s string) string {
	return l.c.String(s)
}

// Words lower-cases the value and splits it on whitespace, dropping empty words.
func Words(value string) []string {
	return splitWords(newLowerer(), value)
}

func splitWords(l *lowerer, value string) []string {
	return strings.Fields(l.lower(value))
}

// containsAll reports whether every word is a substring of s. s must already be lower-cased.
func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

// FormatName turns a model key into its display name: underscores become
// spaces and percent-escapes are decoded. Malformed escapes are kept verbatim.
func FormatName(key string) string {
	spaced := strings.ReplaceAll(key, "_", " ")
	decoded, err := url.PathUnescape(spaced)
	if err != nil {
		return spaced
	}
	return decoded
}
