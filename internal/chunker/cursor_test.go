package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursor(t *testing.T) {
	c := newCursor("aé\nz")

	r, ok := c.peek()
	assert.True(t, ok)
	assert.Equal(t, 'a', r)

	r, _ = c.next()
	assert.Equal(t, 'a', r)

	m := c.mark()
	r, _ = c.next()
	assert.Equal(t, 'é', r)
	c.reset(m)
	r, _ = c.peek()
	assert.Equal(t, 'é', r, "reset should roll back to the mark")

	c.skipLine()
	r, _ = c.peek()
	assert.Equal(t, '\n', r, "skipLine stops before the newline")

	c.next()
	r, _ = c.next()
	assert.Equal(t, 'z', r)

	_, ok = c.next()
	assert.False(t, ok)
	_, ok = c.peek()
	assert.False(t, ok)
}

func TestTryRule(t *testing.T) {
	tests := []struct {
		text    string
		sym     rune
		ok      bool
		nextRun rune
	}{
		// the first symbol is consumed before tryRule is called
		{"---\nx", '-', true, '\n'},
		{"***", '*', true, 0},
		{"--- words\n", '-', true, '\n'},
		{"--\n", '-', false, '-'},
		{"---x\n", '-', false, '-'},
		{"-*-\n", '-', false, '*'},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c := newCursor(tt.text)
			c.next()
			assert.Equal(t, tt.ok, tryRule(c, tt.sym))
			r, _ := c.peek()
			assert.Equal(t, tt.nextRun, r)
		})
	}
}
