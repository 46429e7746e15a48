package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMarkdownSections(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "headers",
			text: "### Title\nContent\n##Heading\n",
			want: []string{"### Title\nContent\n", "##Heading\n"},
		},
		{
			name: "blank line",
			text: "para one\n\npara two",
			want: []string{"para one\n", "\npara two"},
		},
		{
			name: "several blank lines",
			text: "a\n\n\nb",
			want: []string{"a\n", "\n", "\nb"},
		},
		{
			name: "dash rule is dropped",
			text: "A\n---\nB",
			want: []string{"A\n", "\nB"},
		},
		{
			name: "star rule is dropped",
			text: "A\n***\nB",
			want: []string{"A\n", "\nB"},
		},
		{
			name: "rest of rule line is dropped",
			text: "A\n----- trailing words\nB",
			want: []string{"A\n", "\nB"},
		},
		{
			name: "rule at end of input",
			text: "Intro\n---",
			want: []string{"Intro\n"},
		},
		{
			name: "rule at start of input",
			text: "---\nText",
			want: []string{"\nText"},
		},
		{
			name: "rule after header",
			text: "# T\n***\nbody",
			want: []string{"# T\n", "\nbody"},
		},
		{
			name: "list items are not rules",
			text: "- item\n- two",
			want: []string{"- item\n- two"},
		},
		{
			name: "interrupted run is not a rule",
			text: "intro\n--x\n**bold**",
			want: []string{"intro\n--x\n**bold**"},
		},
		{
			name: "short run before space is not a rule",
			text: "intro\n-- -\n",
			want: []string{"intro\n-- -\n"},
		},
		{
			name: "six hashes is a header",
			text: "Intro\n###### Six\n",
			want: []string{"Intro\n", "###### Six\n"},
		},
		{
			name: "seven hashes is content",
			text: "Intro\n####### not a header\nmore",
			want: []string{"Intro\n####### not a header\nmore"},
		},
		{
			name: "header without space",
			text: "text\n#no-space",
			want: []string{"text\n", "#no-space"},
		},
		{
			name: "hashes at end of input",
			text: "text\n##",
			want: []string{"text\n", "##"},
		},
		{
			name: "hash inside a line",
			text: "a # b\nc ## d",
			want: []string{"a # b\nc ## d"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitMarkdownSections(tt.text))
		})
	}
}

func TestSplitMarkdownSections_Fallback(t *testing.T) {
	for _, text := range []string{"", "no boundaries at all", "one line\nand another", "---", "***"} {
		assert.Equal(t, []string{text}, SplitMarkdownSections(text), "text=%q", text)
	}
}

func TestSplitMarkdownSections_RuleDiscarded(t *testing.T) {
	sections := SplitMarkdownSections("A\n---\nB")
	require.Len(t, sections, 2)
	for _, s := range sections {
		assert.NotContains(t, s, "---")
	}
}

func TestSplitMarkdownSections_RoundTripWithoutRules(t *testing.T) {
	inputs := []string{
		"# Intro\nSome text.\n\n## Details\nMore text\n\n\nTrailing\n",
		"#Title\n####### literal\n\nend",
		"plain paragraph\n\nanother paragraph\n",
		"- bullet\n* star bullet\n-- dash\n",
		"### ünïcödé\n日本語\n\n# 見出し",
	}
	for _, text := range inputs {
		assert.Equal(t, text, strings.Join(SplitMarkdownSections(text), ""), "text=%q", text)
	}
}

func TestSplitMarkdownSections_Concurrent(t *testing.T) {
	text := "# A\nalpha\n\n---\n## B\nbeta\n"
	want := SplitMarkdownSections(text)

	done := make(chan []string)
	for i := 0; i < 8; i++ {
		go func() { done <- SplitMarkdownSections(text) }()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}
