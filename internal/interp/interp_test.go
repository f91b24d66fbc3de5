package interp

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/magicmove/internal/plan"
	"github.com/zjrosen/magicmove/internal/token"
)

func moved() plan.Instruction {
	return plan.Instruction{
		Kind:     plan.KindMoved,
		Start:    plan.State{X: 0, Y: 0, Width: 10, Height: 20, Opacity: 1, Color: token.RGB(0, 0, 0)},
		End:      plan.State{X: 100, Y: 40, Width: 10, Height: 20, Opacity: 1, Color: token.RGB(200, 100, 50)},
		Delay:    100 * time.Millisecond,
		Duration: 200 * time.Millisecond,
	}
}

func TestProgress(t *testing.T) {
	in := moved()

	require.Zero(t, Progress(in, 0))
	require.Zero(t, Progress(in, 100*time.Millisecond))
	require.InDelta(t, 0.5, Progress(in, 200*time.Millisecond), 1e-9)
	require.Equal(t, 1.0, Progress(in, 300*time.Millisecond))
	require.Equal(t, 1.0, Progress(in, time.Hour))

	in.Duration = 0
	require.Zero(t, Progress(in, 50*time.Millisecond))
	require.Equal(t, 1.0, Progress(in, 100*time.Millisecond))
}

func TestSample_Linear(t *testing.T) {
	in := moved()

	mid := Sample(in, 200*time.Millisecond, Easing("linear"))

	require.InDelta(t, 50, mid.X, 1e-9)
	require.InDelta(t, 20, mid.Y, 1e-9)
	require.Equal(t, token.RGB(100, 50, 25), mid.Color)

	require.Equal(t, in.Start, Sample(in, 0, Easing("ease-out-back")))
	require.Equal(t, in.End, Sample(in, time.Second, Easing("ease-out-back")))
}

func TestSample_FadeIn(t *testing.T) {
	in := plan.Instruction{
		Kind:     plan.KindAdded,
		Start:    plan.State{X: 5, Opacity: 0},
		End:      plan.State{X: 5, Opacity: 1},
		Duration: time.Second,
	}

	s := Sample(in, 250*time.Millisecond, nil)

	require.InDelta(t, 0.25, s.Opacity, 1e-9)
	require.Equal(t, 5.0, s.X)
}

func TestBlend(t *testing.T) {
	black, white := token.RGB(0, 0, 0), token.RGB(255, 255, 255)

	require.Equal(t, black, Blend(black, white, 0))
	require.Equal(t, white, Blend(black, white, 1))
	require.Equal(t, token.RGB(128, 128, 128), Blend(black, white, 0.5))

	// Unset blends from transparent black.
	half := Blend(token.Color{}, white, 0.5)
	require.Equal(t, token.Color{R: 128, G: 128, B: 128, A: 128}, half)

	require.Equal(t, white, Blend(black, white, 7), "progress is clamped")
}

func TestOpacityClampedWhenOvershooting(t *testing.T) {
	a := plan.State{X: 0, Opacity: 0}
	b := plan.State{X: 10, Opacity: 1}

	s := At(a, b, 1.1)

	require.InDelta(t, 11, s.X, 1e-9)
	require.Equal(t, 1.0, s.Opacity)
}

func TestEasing(t *testing.T) {
	for _, name := range Names() {
		f, ok := Lookup(name)
		require.True(t, ok, name)
		require.InDelta(t, 0, f(0), 1e-9, name)
		require.InDelta(t, 1, f(1), 1e-9, name)
	}

	_, ok := Lookup("bounce")
	require.False(t, ok)
	require.InDelta(t, Easing(DefaultEasing)(0.3), Easing("bounce")(0.3), 1e-12)
	_, ok = Lookup(" Ease-In ")
	require.True(t, ok)
}

func TestEasing_MonotonicCurves(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.SampledFrom([]string{"linear", "ease-in", "ease-out", "ease-in-out"}).Draw(t, "name")
		a := rapid.Float64Range(0, 1).Draw(t, "a")
		b := rapid.Float64Range(0, 1).Draw(t, "b")
		if a > b {
			a, b = b, a
		}
		f := Easing(name)
		if f(a) > f(b)+1e-12 {
			t.Fatalf("%s not monotonic: f(%v)=%v > f(%v)=%v", name, a, f(a), b, f(b))
		}
		if math.IsNaN(f(a)) {
			t.Fatalf("%s(%v) is NaN", name, a)
		}
	})
}
