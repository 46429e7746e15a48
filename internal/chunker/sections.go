package chunker

import "strings"

const (
	maxHeaderLevel = 6
	minRuleLength  = 3
)

// SplitMarkdownSections partitions markdown text into sections. A section
// ends before an ATX header (1-6 '#' at the start of a line), before a
// horizontal rule, or before the second newline of a blank line.
//
// Header detection looks only at the rune after the hash run: "#title" is a
// header, "#######" is literal text. Horizontal rule lines ("---", "***",
// optionally followed by a space and anything up to the newline) are dropped
// from the output, so sections only concatenate back to the input when the
// text has no rules.
//
// If no section is produced the result is []string{text}, including for "".
func SplitMarkdownSections(text string) []string {
	var (
		sections    []string
		buf         strings.Builder
		atLineStart = true
		newlines    int
	)
	flush := func() {
		if buf.Len() > 0 {
			sections = append(sections, buf.String())
			buf.Reset()
		}
	}

	cur := newCursor(text)
	for {
		r, ok := cur.next()
		if !ok {
			break
		}
		switch {
		case r == '#' && atLineStart:
			hashes := 1
			for hashes < maxHeaderLevel {
				if p, ok := cur.peek(); !ok || p != '#' {
					break
				}
				cur.next()
				hashes++
			}
			// a seventh '#' means this is not a header
			if p, ok := cur.peek(); !ok || p != '#' {
				flush()
			}
			buf.WriteString(strings.Repeat("#", hashes))
			atLineStart = false
		case (r == '-' || r == '*') && atLineStart:
			if tryRule(cur, r) {
				flush()
			} else {
				buf.WriteRune(r)
			}
			atLineStart = false
		case r == '\n':
			buf.WriteRune(r)
			newlines++
			atLineStart = true
			if p, ok := cur.peek(); ok && p == '\n' && newlines >= 1 {
				flush()
				newlines = 0
			}
		default:
			buf.WriteRune(r)
			atLineStart = false
			newlines = 0
		}
	}
	flush()

	if len(sections) == 0 {
		return []string{text}
	}
	return sections
}

// tryRule is called after one sym has been consumed at the start of a line.
// It reports whether the line is a horizontal rule made of sym. On success the
// cursor is left at the newline ending the rule; otherwise it is unchanged.
func tryRule(cur *cursor, sym rune) bool {
	m := cur.mark()
	run := 1
	for {
		r, ok := cur.next()
		if !ok || r == '\n' || r == ' ' {
			break
		}
		if r != sym {
			run = 0
			break
		}
		run++
	}
	cur.reset(m)

	if run < minRuleLength {
		return false
	}
	cur.skipLine()
	return true
}
