package plan

import (
	"errors"
	"fmt"

	"github.com/mattn/go-runewidth"
	"go.uber.org/multierr"

	"github.com/zjrosen/magicmove/internal/token"
)

// Geometry resolves a token's rendered rectangle. Hosts that need a layout
// pass before geometry is known implement it lazily; ok is false when the
// rectangle cannot be supplied.
type Geometry interface {
	Rect(t token.Token) (r token.Rect, ok bool)
}

// GeometryFunc adapts a function to Geometry.
type GeometryFunc func(t token.Token) (token.Rect, bool)

// Rect calls f.
func (f GeometryFunc) Rect(t token.Token) (token.Rect, bool) { return f(t) }

// TokenRects reads the rectangle already stored on each token. A zero Rect
// counts as unavailable.
var TokenRects Geometry = GeometryFunc(func(t token.Token) (token.Rect, bool) {
	return t.Rect, t.Rect != (token.Rect{})
})

// ErrGeometryUnavailable is matched by every *GeometryUnavailableError.
var ErrGeometryUnavailable = errors.New("geometry unavailable")

// Fallback names the substitute used when geometry is missing.
type Fallback string

const (
	FallbackSibling Fallback = "sibling"
	FallbackNearest Fallback = "nearest"
	FallbackOrigin  Fallback = "origin"
)

// GeometryUnavailableError reports a token planned with substitute
// geometry.
type GeometryUnavailableError struct {
	Side     string
	ID       token.ID
	Text     string
	Line     int
	Column   int
	Fallback Fallback
}

func (e *GeometryUnavailableError) Error() string {
	return fmt.Sprintf("geometry unavailable for %s token %q at %d:%d, using %s",
		e.Side, e.Text, e.Line+1, e.Column+1, e.Fallback)
}

func (e *GeometryUnavailableError) Unwrap() error { return ErrGeometryUnavailable }

type resolved struct {
	done   bool
	ok     bool
	rect   token.Rect
	approx bool
}

// resolver memoizes geometry lookups for one sequence and substitutes
// fallback rectangles for tokens the host cannot place.
type resolver struct {
	side     string
	seq      token.Sequence
	geom     Geometry
	cache    []resolved
	warnings error

	before, after []int
}

func newResolver(side string, seq token.Sequence, geom Geometry) *resolver {
	if geom == nil {
		geom = TokenRects
	}
	return &resolver{side: side, seq: seq, geom: geom, cache: make([]resolved, len(seq))}
}

// lookup asks the host once per token.
func (r *resolver) lookup(i int) (token.Rect, bool) {
	c := &r.cache[i]
	if !c.done {
		c.rect, c.ok = r.geom.Rect(r.seq[i])
		c.done = true
	}
	return c.rect, c.ok
}

// rect returns the token's rectangle, or a substitute derived from the
// closest placeable token: first on the same line, preferring the left
// neighbour, then anywhere in sequence order.
func (r *resolver) rect(i int) (token.Rect, bool) {
	if rect, ok := r.lookup(i); ok {
		return rect, false
	}
	c := &r.cache[i]
	if c.approx {
		return c.rect, true
	}

	t := r.seq[i]
	fallback := FallbackOrigin
	var rect token.Rect
	if j := r.sameLine(i); j >= 0 {
		fallback = FallbackSibling
		rect = r.relativeTo(t, j)
	} else if j := r.nearest(i); j >= 0 {
		fallback = FallbackNearest
		rect = r.relativeTo(t, j)
	}

	c.rect, c.approx = rect, true
	r.warnings = multierr.Append(r.warnings, &GeometryUnavailableError{
		Side:     r.side,
		ID:       t.ID,
		Text:     t.Text,
		Line:     t.Line,
		Column:   t.Column,
		Fallback: fallback,
	})
	return rect, true
}

// index fills before and after on the first fallback. before[i] is the
// closest resolvable token at or left of i and after[i] the closest at or
// right of it, -1 when there is none.
func (r *resolver) index() {
	if r.before != nil {
		return
	}
	n := len(r.seq)
	r.before, r.after = make([]int, n), make([]int, n)
	last := -1
	for i := range n {
		if _, ok := r.lookup(i); ok {
			last = i
		}
		r.before[i] = last
	}
	last = -1
	for i := n - 1; i >= 0; i-- {
		if _, ok := r.lookup(i); ok {
			last = i
		}
		r.after[i] = last
	}
}

// neighbours returns the closest resolvable tokens either side of i.
func (r *resolver) neighbours(i int) (left, right int) {
	r.index()
	left, right = -1, -1
	if i > 0 {
		left = r.before[i-1]
	}
	if i+1 < len(r.seq) {
		right = r.after[i+1]
	}
	return left, right
}

func (r *resolver) sameLine(i int) int {
	line := r.seq[i].Line
	left, right := r.neighbours(i)
	if left >= 0 && r.seq[left].Line == line {
		return left
	}
	if right >= 0 && r.seq[right].Line == line {
		return right
	}
	return -1
}

func (r *resolver) nearest(i int) int {
	left, right := r.neighbours(i)
	switch {
	case left < 0:
		return right
	case right < 0:
		return left
	case right-i < i-left:
		return right
	default:
		return left
	}
}

// relativeTo places t by its logical offset from the resolved token j,
// using j's rectangle to estimate the cell size.
func (r *resolver) relativeTo(t token.Token, j int) token.Rect {
	anchor := r.seq[j]
	ar, _ := r.lookup(j)

	cell := ar.Width
	if w := runewidth.StringWidth(anchor.Text); w > 0 {
		cell = ar.Width / float64(w)
	}
	return token.Rect{
		X:      ar.X + float64(t.Column-anchor.Column)*cell,
		Y:      ar.Y + float64(t.Line-anchor.Line)*ar.Height,
		Width:  float64(runewidth.StringWidth(t.Text)) * cell,
		Height: ar.Height,
	}
}
