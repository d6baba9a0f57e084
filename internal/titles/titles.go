// Package titles normalizes book titles coming out of e-reader exports.
//
// Exported titles carry noise that breaks both catalog lookups and
// filename round-trips: bracketed edition notes, curly quotes, accented
// letters. Normalize strips all of it deterministically so the same title
// always produces the same search key. Normalize is idempotent.
package titles

import (
	"regexp"
	"strings"
)

var (
	parenthesized = regexp.MustCompile(`\(.*?\)`)
	bracketed     = regexp.MustCompile(`\[.*?\]`)
	wordStart     = regexp.MustCompile(`\b\w`)
	whitespaceRun = regexp.MustCompile(`\s+`)

	// Curly quotes and accented Latin letters folded in a single pass.
	// Apostrophe stripping happens after quote normalization so that
	// curly single quotes are removed too.
	foldReplacer = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"à", "a", "â", "a", "ä", "a",
		"î", "i", "ï", "i",
		"ô", "o", "ö", "o",
		"û", "u", "ü", "u", "ù", "u",
		"ç", "c",
	)
)

// Normalize cleans a raw exported title into a catalog search key.
// Order matters: asides are removed before quote folding so that a
// bracketed aside containing quotes disappears entirely.
func Normalize(title string) string {
	title = parenthesized.ReplaceAllString(title, "")
	title = bracketed.ReplaceAllString(title, "")
	title = foldReplacer.Replace(title)
	title = strings.ReplaceAll(title, "'", "")
	return strings.TrimSpace(title)
}

// FromFilename recovers a human-readable title from an export filename:
// "the-pragmatic-programmer.md" -> "The Pragmatic Programmer".
func FromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".md")
	name = strings.ReplaceAll(name, "-", " ")
	name = wordStart.ReplaceAllStringFunc(name, strings.ToUpper)
	return Normalize(name)
}

// Slug builds the export filename stem for a title: normalized,
// lower-cased, whitespace runs collapsed to single hyphens.
func Slug(title string) string {
	s := strings.ToLower(Normalize(title))
	return whitespaceRun.ReplaceAllString(s, "-")
}
