// Package match implements the title normalization and author comparison
// rules used to pair Goodreads rows with catalog search results.
package match

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxAuthorDistance is the exclusive Levenshtein bound below which two
// author names are considered the same person. Distances 0-2 absorb
// initials, diacritics and minor misspellings.
const maxAuthorDistance = 3

// NormalizeTitle lowercases a title and strips everything except letters,
// digits and whitespace. Every title comparison in the program goes through
// this so that "The Martian: A Novel" and "the martian a novel" collide.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// AuthorMatch reports whether candidate names any of the known authors.
// Comparison is case-insensitive and tolerates small edit distances. An
// empty author list matches anything, there is nothing to contradict.
func AuthorMatch(authors []string, candidate string) bool {
	if len(authors) == 0 {
		return true
	}
	cand := strings.ToLower(candidate)
	for _, author := range authors {
		if fuzzy.LevenshteinDistance(strings.ToLower(author), cand) < maxAuthorDistance {
			return true
		}
	}
	return false
}
