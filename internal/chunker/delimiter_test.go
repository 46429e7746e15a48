package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitDelimited(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		delimiters []rune
		want       []string
	}{
		{
			name:       "empty input",
			text:       "",
			delimiters: SemanticDelimiters,
			want:       nil,
		},
		{
			name:       "no delimiter still emitted",
			text:       "abc",
			delimiters: []rune{'.'},
			want:       []string{"abc"},
		},
		{
			name:       "single delimiter",
			text:       ".",
			delimiters: []rune{'.'},
			want:       []string{"."},
		},
		{
			name:       "consecutive delimiters are not merged",
			text:       ",,.",
			delimiters: SemanticDelimiters,
			want:       []string{",", ",", "."},
		},
		{
			name:       "whitespace is kept",
			text:       "  a.  b",
			delimiters: []rune{'.'},
			want:       []string{"  a.", "  b"},
		},
		{
			name:       "multibyte delimiter",
			text:       "wait… what",
			delimiters: []rune{'…'},
			want:       []string{"wait…", " what"},
		},
		{
			name:       "empty delimiter set",
			text:       "a.b",
			delimiters: nil,
			want:       []string{"a.b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitDelimited(tt.text, tt.delimiters))
		})
	}
}

func TestParseSemantic(t *testing.T) {
	got := ParseSemantic("This is a test! Next element, third case\nFinal")
	assert.Equal(t, []string{"This is a test!", " Next element,", " third case\n", "Final"}, got)
}

func TestSplitDelimited_Lossless(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"Hello, world. How are you? Fine!\nNext line",
		"\n\n\n",
		"ünïcödé, ẞtraße. 日本語。テスト!",
		"trailing delimiter.",
	}
	delimiterSets := [][]rune{
		SemanticDelimiters,
		{'。'},
		{' '},
		nil,
	}
	for _, text := range inputs {
		for _, d := range delimiterSets {
			assert.Equal(t, text, strings.Join(SplitDelimited(text, d), ""), "text=%q delimiters=%q", text, string(d))
		}
	}
}
