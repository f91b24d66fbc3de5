package layout

import (
	"github.com/zjrosen/magicmove/internal/token"
)

// Grid maps logical (line, column) positions to host coordinates.
type Grid struct {
	CellWidth  float64
	LineHeight float64
	PaddingX   float64
	PaddingY   float64
	// TabWidth is used to measure tabs that survive inside token text.
	TabWidth int
	// MaxLines clips the visible area; tokens on lines at or beyond it have
	// no geometry. Zero means unlimited.
	MaxLines int
}

// TerminalGrid is one cell per column and one row per line.
func TerminalGrid(maxLines int) Grid {
	return Grid{CellWidth: 1, LineHeight: 1, TabWidth: DefaultTabWidth, MaxLines: maxLines}
}

// Visible reports whether the given line is inside the grid.
func (g Grid) Visible(line int) bool {
	return g.MaxLines <= 0 || line < g.MaxLines
}

// RectFor computes the rect of t from its logical position.
func (g Grid) RectFor(t token.Token) token.Rect {
	return token.Rect{
		X:      g.PaddingX + float64(t.Column)*g.CellWidth,
		Y:      g.PaddingY + float64(t.Line)*g.LineHeight,
		Width:  float64(Cells(t.Text, t.Column, g.TabWidth)) * g.CellWidth,
		Height: g.LineHeight,
	}
}

// Place returns a copy of seq with Rect filled for every visible token.
// Clipped tokens keep a zero Rect.
func (g Grid) Place(seq token.Sequence) token.Sequence {
	out := make(token.Sequence, len(seq))
	for i, t := range seq {
		if g.Visible(t.Line) {
			t.Rect = g.RectFor(t)
		} else {
			t.Rect = token.Rect{}
		}
		out[i] = t
	}
	return out
}
