package chunker

import (
	"slices"
	"unicode/utf8"
)

// SemanticDelimiters terminate clause and sentence fragments.
var SemanticDelimiters = []rune{'.', '!', '?', '\n', ','}

// SplitDelimited cuts text right after every rune found in delimiters.
// Each fragment keeps its terminating delimiter, and a trailing fragment
// without one is still returned, so joining the result yields text again.
// Fragments are substrings of text; nothing is trimmed or merged.
func SplitDelimited(text string, delimiters []rune) []string {
	var fragments []string
	start := 0
	for pos := 0; pos < len(text); {
		r, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
		if slices.Contains(delimiters, r) {
			fragments = append(fragments, text[start:pos])
			start = pos
		}
	}
	if start < len(text) {
		fragments = append(fragments, text[start:])
	}
	return fragments
}

// ParseSemantic splits text into clause-like fragments on SemanticDelimiters.
func ParseSemantic(text string) []string {
	return SplitDelimited(text, SemanticDelimiters)
}
