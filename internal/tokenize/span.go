// Package tokenize flattens a highlighter's nested styled-span tree into the
// ordered token sequence the matcher works on.
package tokenize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/magicmove/internal/token"
)

// Range is a byte range [Start, End) into the highlighted source.
type Range struct {
	Start int
	End   int
}

// Span is one node of a highlighter's output. Leaves carry Text; containers
// carry Children and may also carry the raw Text they cover.
type Span struct {
	// Kind names the scope, e.g. "Keyword" or "LiteralString". Empty kinds
	// do not contribute to a token's path.
	Kind     string
	Style    token.StyleSpec
	Text     string
	Range    *Range
	Children []Span
}

// Leaf returns a span with text and style only.
func Leaf(kind, text string, style token.StyleSpec) Span {
	return Span{Kind: kind, Text: text, Style: style}
}

// Flatten returns the text covered by the span's leaves, in order.
func (s Span) Flatten() string {
	if len(s.Children) == 0 {
		return s.Text
	}
	var b strings.Builder
	s.appendText(&b)
	return b.String()
}

func (s Span) appendText(b *strings.Builder) {
	if len(s.Children) == 0 {
		b.WriteString(s.Text)
		return
	}
	for _, c := range s.Children {
		c.appendText(b)
	}
}

// ErrMalformedTree marks spans that violated nesting assumptions and were
// recovered as leaves.
var ErrMalformedTree = errors.New("malformed highlight tree")

// MalformedTreeError describes one recovered span.
type MalformedTreeError struct {
	Path   string
	Reason string
}

func (e *MalformedTreeError) Error() string {
	path := e.Path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("%s at %s: %s", ErrMalformedTree, path, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedTree.
func (e *MalformedTreeError) Unwrap() error {
	return ErrMalformedTree
}

// check reports why a container span cannot be flattened, or "".
func (s Span) check() string {
	if s.Text != "" {
		if got := s.Flatten(); got != s.Text {
			return fmt.Sprintf("text %q does not match children %q", s.Text, got)
		}
	}

	prevEnd := -1
	for i, c := range s.Children {
		if c.Range == nil {
			continue
		}
		if c.Range.Start > c.Range.End {
			return fmt.Sprintf("child %d has inverted range [%d,%d)", i, c.Range.Start, c.Range.End)
		}
		if s.Range != nil && (c.Range.Start < s.Range.Start || c.Range.End > s.Range.End) {
			return fmt.Sprintf("child %d range [%d,%d) escapes parent [%d,%d)",
				i, c.Range.Start, c.Range.End, s.Range.Start, s.Range.End)
		}
		if c.Range.Start < prevEnd {
			return fmt.Sprintf("child %d range [%d,%d) overlaps previous sibling", i, c.Range.Start, c.Range.End)
		}
		prevEnd = c.Range.End
	}
	return ""
}
