package gif

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"strings"
	"time"

	"github.com/fogleman/gg"

	"github.com/zjrosen/magicmove/internal/emit"
	"github.com/zjrosen/magicmove/internal/interp"
	"github.com/zjrosen/magicmove/internal/plan"
	"github.com/zjrosen/magicmove/internal/token"
)

// minOpacity skips fragments that would not change a pixel.
const minOpacity = 0.01

// painter draws sampled transitions onto fixed-size canvases.
type painter struct {
	faces      faces
	metrics    metrics
	width      int
	height     int
	background token.Color
	foreground token.Color
}

func rgba(c token.Color, opacity float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A)*clamp01(opacity) + 0.5)}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// frame renders tr at elapsed. Removed fragments are painted first so new
// content covers them.
func (p *painter) frame(tr emit.Transition, elapsed time.Duration) image.Image {
	dc := gg.NewContext(p.width, p.height)
	dc.SetColor(rgba(p.background, 1))
	dc.Clear()

	ease := interp.Easing(tr.Easing)
	for _, removed := range []bool{true, false} {
		for _, in := range tr.Instructions {
			if (in.Kind == plan.KindRemoved) != removed {
				continue
			}
			p.draw(dc, in, interp.Sample(in, elapsed, ease))
		}
	}
	return dc.Image()
}

func (p *painter) draw(dc *gg.Context, in plan.Instruction, st plan.State) {
	if st.Opacity < minOpacity {
		return
	}

	if st.Background.IsSet() && st.Background != p.background {
		dc.SetColor(rgba(st.Background, st.Opacity))
		dc.DrawRectangle(st.X, st.Y, st.Width, st.Height)
		dc.Fill()
	}

	fg := st.Color
	if !fg.IsSet() {
		fg = p.foreground
	}
	dc.SetColor(rgba(fg, st.Opacity))
	dc.SetFontFace(p.faces[faceIndex(in.Style)])

	text := strings.ReplaceAll(in.Text, "\t", " ")
	baseline := st.Y + p.metrics.baseline
	dc.DrawString(text, st.X, baseline)

	if in.Style.Underline {
		dc.SetLineWidth(1)
		dc.DrawLine(st.X, baseline+2, st.X+st.Width, baseline+2)
		dc.Stroke()
	}
}

// buildPalette puts every colour the transitions use first, then fills up
// with Plan 9 so blended fades have close neighbours to dither with.
func buildPalette(background, foreground token.Color, transitions []emit.Transition) color.Palette {
	seen := make(map[color.NRGBA]bool)
	pal := make(color.Palette, 0, 256)
	add := func(c token.Color) {
		if !c.IsSet() || len(pal) >= 256 {
			return
		}
		n := rgba(c, 1)
		n.A = 0xff
		if seen[n] {
			return
		}
		seen[n] = true
		pal = append(pal, n)
	}

	add(background)
	add(foreground)
	for _, tr := range transitions {
		for _, in := range tr.Instructions {
			add(in.Style.Foreground)
			add(in.Style.Background)
		}
	}
	for _, c := range palette.Plan9 {
		if len(pal) >= 256 {
			break
		}
		r, g, b, _ := c.RGBA()
		add(token.RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8)))
	}
	return pal
}

// quantize converts img to the palette with Floyd-Steinberg dithering.
func quantize(img image.Image, pal color.Palette) *image.Paletted {
	bounds := img.Bounds()
	out := image.NewPaletted(bounds, pal)
	draw.FloydSteinberg.Draw(out, bounds, img, bounds.Min)
	return out
}
