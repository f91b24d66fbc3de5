package layout

import (
	"github.com/zjrosen/magicmove/internal/token"
)

// Snapshot is the last rendered geometry of a sequence, keyed by token id.
// It satisfies plan.Geometry.
type Snapshot struct {
	rects map[token.ID]token.Rect
}

// NewSnapshot records the rect of every placed token in seq. Clipped tokens
// carry a zero Rect and are skipped; zero-width tokens such as a styled
// zero-width space keep their position.
func NewSnapshot(seq token.Sequence) Snapshot {
	rects := make(map[token.ID]token.Rect, len(seq))
	for _, t := range seq {
		if t.Rect.Height <= 0 {
			continue
		}
		if _, dup := rects[t.ID]; dup {
			continue
		}
		rects[t.ID] = t.Rect
	}
	return Snapshot{rects: rects}
}

// Rect returns the recorded geometry for t.
func (s Snapshot) Rect(t token.Token) (token.Rect, bool) {
	r, ok := s.rects[t.ID]
	return r, ok
}

// Len returns the number of recorded rects.
func (s Snapshot) Len() int {
	return len(s.rects)
}

// Resolver lays tokens out on demand, the way a host measures after a
// layout pass. It satisfies plan.Geometry.
type Resolver struct {
	Grid Grid
}

// Rect computes t's geometry, reporting false for clipped lines.
func (r Resolver) Rect(t token.Token) (token.Rect, bool) {
	if !r.Grid.Visible(t.Line) {
		return token.Rect{}, false
	}
	return r.Grid.RectFor(t), true
}
