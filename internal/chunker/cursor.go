package chunker

import "unicode/utf8"

// cursor walks a string rune by rune. Lookahead is done by taking a mark,
// advancing, and then either keeping the new position or resetting to the mark.
type cursor struct {
	text string
	pos  int
}

func newCursor(text string) *cursor {
	return &cursor{text: text}
}

// next consumes and returns the rune at the current position.
func (c *cursor) next() (rune, bool) {
	if c.pos >= len(c.text) {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(c.text[c.pos:])
	c.pos += size
	return r, true
}

// peek returns the rune at the current position without consuming it.
func (c *cursor) peek() (rune, bool) {
	if c.pos >= len(c.text) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(c.text[c.pos:])
	return r, true
}

func (c *cursor) mark() int { return c.pos }

func (c *cursor) reset(mark int) { c.pos = mark }

// skipLine advances up to, but not past, the next newline.
func (c *cursor) skipLine() {
	for {
		r, ok := c.peek()
		if !ok || r == '\n' {
			return
		}
		c.next()
	}
}
