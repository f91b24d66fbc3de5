package terminal

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/magicmove/internal/interp"
	"github.com/zjrosen/magicmove/internal/plan"
	"github.com/zjrosen/magicmove/internal/token"
)

// minOpacity hides fragments that have almost faded out. A terminal cell
// cannot be translucent, so fading is emulated by blending towards the
// background colour.
const minOpacity = 0.05

type cell struct {
	text  string
	style token.Style
	// wide marks the trailing cells covered by a double-width cluster.
	wide bool
}

type canvas struct {
	width, height int
	background    token.Color
	cells         [][]cell
}

func newCanvas(width, height int, background token.Color) *canvas {
	c := &canvas{width: max(width, 0), height: max(height, 0), background: background}
	c.cells = make([][]cell, c.height)
	for y := range c.cells {
		row := make([]cell, c.width)
		for x := range row {
			row[x] = cell{text: " ", style: token.Style{Background: background}}
		}
		c.cells[y] = row
	}
	return c
}

// draw paints one sampled fragment. Later calls paint over earlier ones.
func (c *canvas) draw(text string, base token.Style, st plan.State, fallback token.Color) {
	if st.Opacity < minOpacity {
		return
	}
	y := int(math.Round(st.Y))
	if y < 0 || y >= c.height {
		return
	}

	fg := st.Color
	if !fg.IsSet() {
		fg = fallback
	}
	style := base
	style.Foreground = opaque(interp.Blend(c.background, fg, st.Opacity))
	style.Background = c.background
	if st.Background.IsSet() {
		style.Background = opaque(interp.Blend(c.background, st.Background, st.Opacity))
	}

	x := int(math.Round(st.X))
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		w := runewidth.StringWidth(cluster)
		if cluster == "\t" {
			cluster, w = " ", 1
		}
		if w == 0 {
			continue
		}
		if x >= 0 && x+w <= c.width {
			c.cells[y][x] = cell{text: cluster, style: style}
			for i := 1; i < w; i++ {
				c.cells[y][x+i] = cell{style: style, wide: true}
			}
		}
		x += w
	}
}

// render turns the canvas into lines, grouping runs of equal style.
func (c *canvas) render(r *lipgloss.Renderer) []string {
	lines := make([]string, c.height)
	for y, row := range c.cells {
		var b strings.Builder
		var run strings.Builder
		var runStyle token.Style
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(styleFor(r, runStyle).Render(run.String()))
			run.Reset()
		}
		for x, cl := range row {
			if cl.wide {
				continue
			}
			if x == 0 || cl.style != runStyle {
				flush()
				runStyle = cl.style
			}
			run.WriteString(cl.text)
		}
		flush()
		lines[y] = ansi.Truncate(b.String(), c.width, "")
	}
	return lines
}

func styleFor(r *lipgloss.Renderer, st token.Style) lipgloss.Style {
	s := r.NewStyle().Bold(st.Bold).Italic(st.Italic).Underline(st.Underline)
	if st.Foreground.IsSet() {
		s = s.Foreground(lipgloss.Color(opaque(st.Foreground).String()))
	}
	if st.Background.IsSet() {
		s = s.Background(lipgloss.Color(opaque(st.Background).String()))
	}
	return s
}

func opaque(c token.Color) token.Color {
	if !c.IsSet() {
		return c
	}
	c.A = 0xff
	return c
}

// paint samples every instruction at elapsed onto c.
// Removed fragments go first so they stay under the new content.
func paint(c *canvas, instructions []plan.Instruction, elapsed time.Duration, ease interp.Func, fallback token.Color) {
	for _, removed := range []bool{true, false} {
		for _, in := range instructions {
			if (in.Kind == plan.KindRemoved) != removed {
				continue
			}
			c.draw(in.Text, in.Style, interp.Sample(in, elapsed, ease), fallback)
		}
	}
}
