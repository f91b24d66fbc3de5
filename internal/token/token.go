// Package token defines the styled, positioned code fragments that every
// transition is computed from.
package token

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// ID is the identity key of a token. Derived ids are stable across
// re-tokenization of unchanged code, see DeriveID.
type ID string

// Token is one rendered fragment of code for a single frame.
// Tokens are values; nothing in this module mutates a token after it has
// been placed in a Sequence.
type Token struct {
	ID    ID
	Text  string
	Style Style
	// Rect is the fragment's geometry in the host's coordinate space.
	// The zero Rect means the host has not supplied geometry.
	Rect Rect
	// Line and Column are the logical position, Column in display cells.
	Line   int
	Column int
	// Path is the chain of span kinds the fragment was nested in.
	Path string
}

// Sequence is the ordered token list of one code state, line-major,
// left-to-right.
type Sequence []Token

// Texts returns the text of every token in order.
func (s Sequence) Texts() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.Text
	}
	return out
}

// Lines returns the number of lines the sequence spans.
func (s Sequence) Lines() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Line + 1
}

// String renders the sequence back to text, one line per Line, with tokens
// separated by their column gaps.
func (s Sequence) String() string {
	var b strings.Builder
	line, col := 0, 0
	for _, t := range s {
		for line < t.Line {
			b.WriteByte('\n')
			line++
			col = 0
		}
		if t.Column > col {
			b.WriteString(strings.Repeat(" ", t.Column-col))
			col = t.Column
		}
		b.WriteString(t.Text)
		col += runewidth.StringWidth(t.Text)
	}
	return b.String()
}
