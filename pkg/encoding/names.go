// Package encoding provides text utilities for rscn descriptor names.
package encoding

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName converts an entity display name into the join key used
// across the rscn tables. Leading and trailing whitespace is dropped and
// every inner whitespace rune becomes an underscore, so "Cube " and "Cube"
// share a key. A name made only of whitespace keeps one underscore per rune.
func NormalizeName(name string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		name = trimmed
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
}

// FoldASCII strips diacritics from s and replaces any remaining non-ASCII
// or control rune with an underscore, so the result is safe for the ASCII
// index file. Returns s unchanged if it is already printable ASCII.
func FoldASCII(s string) string {
	if IsPrintableASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		if r < ' ' || r > '~' {
			return '_'
		}
		return r
	}, folded)
}

// ImageBasename returns the file name part of a host image path.
// Host paths may use backslashes or the "//" blend-relative prefix.
func ImageBasename(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// IsPrintableASCII reports whether every byte of s is in ' '..'~'.
func IsPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < ' ' || s[i] > '~' {
			return false
		}
	}
	return true
}
