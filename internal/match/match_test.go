package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases",
			input:    "The Martian",
			expected: "the martian",
		},
		{
			name:     "strips punctuation",
			input:    "The Martian: A Novel",
			expected: "the martian a novel",
		},
		{
			name:     "keeps digits",
			input:    "Catch-22",
			expected: "catch22",
		},
		{
			name:     "keeps unicode letters",
			input:    "Sinuhe egyptiläinen",
			expected: "sinuhe egyptiläinen",
		},
		{
			name:     "trims surrounding space",
			input:    "  Dune  ",
			expected: "dune",
		},
		{
			name:     "apostrophes and exclamations",
			input:    "Don't Panic!",
			expected: "dont panic",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTitle(tt.input))
		})
	}
}

func TestAuthorMatch(t *testing.T) {
	tests := []struct {
		name      string
		authors   []string
		candidate string
		expected  bool
	}{
		{
			name:      "exact match",
			authors:   []string{"Andy Weir"},
			candidate: "Andy Weir",
			expected:  true,
		},
		{
			name:      "case insensitive",
			authors:   []string{"ANDY WEIR"},
			candidate: "andy weir",
			expected:  true,
		},
		{
			name:      "distance one accepted",
			authors:   []string{"Ursula K. Le Guin"},
			candidate: "Ursula K Le Guin",
			expected:  true,
		},
		{
			name:      "distance two accepted",
			authors:   []string{"Leo Tolstoy"},
			candidate: "Lev Tolstoi",
			expected:  true,
		},
		{
			name:      "distance three rejected",
			authors:   []string{"Robin Hobb"},
			candidate: "Robert Hobb",
			expected:  false,
		},
		{
			name:      "different author rejected",
			authors:   []string{"Stephen King"},
			candidate: "Peter Straub",
			expected:  false,
		},
		{
			name:      "any author in the set matches",
			authors:   []string{"Terry Pratchett", "Neil Gaiman"},
			candidate: "Neil Gaiman",
			expected:  true,
		},
		{
			name:      "no known authors matches anything",
			authors:   nil,
			candidate: "Whoever Wrote This",
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AuthorMatch(tt.authors, tt.candidate))
		})
	}
}
