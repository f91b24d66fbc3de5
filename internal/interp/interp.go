// Package interp samples instructions at a point in time. Every host uses
// it so terminal frames and exported frames match exactly.
package interp

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/zjrosen/magicmove/internal/plan"
	"github.com/zjrosen/magicmove/internal/token"
)

// Progress returns the linear progress of in at elapsed, clamped to [0,1].
// Instructions with zero duration jump to their end once their delay has
// passed.
func Progress(in plan.Instruction, elapsed time.Duration) float64 {
	t := elapsed - in.Delay
	switch {
	case t < 0:
		return 0
	case in.Duration <= 0 || t >= in.Duration:
		return 1
	default:
		return float64(t) / float64(in.Duration)
	}
}

// Sample returns the state of in at elapsed. A nil ease is linear.
func Sample(in plan.Instruction, elapsed time.Duration, ease Func) plan.State {
	p := Progress(in, elapsed)
	if ease != nil && p > 0 && p < 1 {
		p = ease(p)
	}
	return At(in.Start, in.End, p)
}

// At interpolates between a and b. Geometry follows p as given so
// overshooting curves overshoot; opacity and colour are clamped.
func At(a, b plan.State, p float64) plan.State {
	c := clamp(p)
	return plan.State{
		X:          lerp(a.X, b.X, p),
		Y:          lerp(a.Y, b.Y, p),
		Width:      lerp(a.Width, b.Width, p),
		Height:     lerp(a.Height, b.Height, p),
		Opacity:    lerp(a.Opacity, b.Opacity, c),
		Color:      Blend(a.Color, b.Color, c),
		Background: Blend(a.Background, b.Background, c),
	}
}

// Blend mixes two colours channel by channel in RGB space. Unset colours
// blend as transparent black.
func Blend(a, b token.Color, t float64) token.Color {
	if a == b {
		return a
	}
	t = clamp(t)
	mixed := toColorful(a).BlendRgb(toColorful(b), t).Clamped()
	r, g, bl := mixed.RGB255()
	return token.Color{R: r, G: g, B: bl, A: uint8(lerp(float64(a.A), float64(b.A), t) + 0.5)}
}

func toColorful(c token.Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}
