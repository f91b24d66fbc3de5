package gif

import (
	"bytes"
	"context"
	"image"
	"image/color"
	stdgif "image/gif"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/magicmove/internal/emit"
	"github.com/zjrosen/magicmove/internal/engine"
	"github.com/zjrosen/magicmove/internal/highlight"
	"github.com/zjrosen/magicmove/internal/host"
	"github.com/zjrosen/magicmove/internal/layout"
	"github.com/zjrosen/magicmove/internal/plan"
	"github.com/zjrosen/magicmove/internal/token"
	"github.com/zjrosen/magicmove/internal/tracing"
)

var steps = []host.Payload{
	{Path: "one.go", Source: "x := 1\n", Language: "go"},
	{Path: "two.go", Source: "y := 2\nx := 1\n", Language: "go"},
}

var background = token.RGB(0x10, 0x20, 0x30)

func newStage() *host.Stage {
	return host.NewStage(engine.New(plan.DefaultConfig()), highlight.New("monokai"), layout.TerminalGrid(0))
}

func decode(t *testing.T, b []byte) *stdgif.GIF {
	t.Helper()
	g, err := stdgif.DecodeAll(bytes.NewReader(b))
	require.NoError(t, err)
	return g
}

func isBackground(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return uint8(r>>8) == background.R && uint8(g>>8) == background.G && uint8(b>>8) == background.B
}

func countInk(img image.Image) int {
	n := 0
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !isBackground(img.At(x, y)) {
				n++
			}
		}
	}
	return n
}

func TestExport_FramesAndTiming(t *testing.T) {
	var buf bytes.Buffer
	frames, err := Export(context.Background(), newStage(), steps, &buf, Options{
		FPS:        10,
		Background: background,
	})
	require.NoError(t, err)

	// 500ms at 10fps is frames at 0..500ms inclusive, per transition.
	require.Equal(t, 12, frames)

	g := decode(t, buf.Bytes())
	require.Len(t, g.Image, 12)
	require.Equal(t, 10, g.Delay[0])
	require.Equal(t, 100, g.Delay[5], "hold after the mount")
	require.Equal(t, 100, g.Delay[11], "hold after the update")
	require.Zero(t, g.LoopCount, "loops forever")

	first := g.Image[0]
	for _, img := range g.Image {
		require.Equal(t, first.Bounds(), img.Bounds(), "all frames share one canvas")
	}

	require.Zero(t, countInk(g.Image[0]), "mount starts fully transparent")
	require.Positive(t, countInk(g.Image[5]), "mount ends with visible code")
}

func TestExport_CanvasFitsEveryState(t *testing.T) {
	var one, two bytes.Buffer
	_, err := Export(context.Background(), newStage(), steps[:1], &one, Options{FPS: 10})
	require.NoError(t, err)
	_, err = Export(context.Background(), newStage(), steps, &two, Options{FPS: 10})
	require.NoError(t, err)

	small := decode(t, one.Bytes()).Image[0].Bounds()
	large := decode(t, two.Bytes()).Image[0].Bounds()
	require.Greater(t, large.Dy(), small.Dy(), "second line adds height")
}

func TestExport_NoLoop(t *testing.T) {
	var buf bytes.Buffer
	_, err := Export(context.Background(), newStage(), steps[:1], &buf, Options{FPS: 10, NoLoop: true})
	require.NoError(t, err)
	require.Equal(t, -1, decode(t, buf.Bytes()).LoopCount)
}

func TestExport_NothingToExport(t *testing.T) {
	_, err := Export(context.Background(), newStage(), nil, &bytes.Buffer{}, Options{})
	require.Error(t, err)
}

func TestExporter_Lifecycle(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	e, err := NewExporter(newStage(), &buf, Options{FPS: 10})
	require.NoError(t, err)

	require.ErrorIs(t, e.Update(ctx, steps[0]), host.ErrNotMounted)
	require.NoError(t, e.Mount(ctx, steps[0]))
	require.Zero(t, buf.Len(), "nothing is written before Dispose")

	require.NoError(t, e.Dispose())
	require.Positive(t, buf.Len())
	require.Equal(t, 6, e.Frames())

	require.NoError(t, e.Dispose())
	require.ErrorIs(t, e.Update(ctx, steps[1]), host.ErrDisposed)
	require.ErrorIs(t, e.Mount(ctx, steps[1]), host.ErrDisposed)
}

func TestExporter_DisposeWithoutMountWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewExporter(newStage(), &buf, Options{})
	require.NoError(t, err)
	require.NoError(t, e.Dispose())
	require.Zero(t, buf.Len())
}

func TestExporter_GridFromFontMetrics(t *testing.T) {
	stage := newStage()
	e, err := NewExporter(stage, &bytes.Buffer{}, Options{FontSize: 20, LineSpacing: 1.5, Padding: 8})
	require.NoError(t, err)

	g := e.Grid()
	require.Positive(t, g.CellWidth)
	require.Greater(t, g.LineHeight, g.CellWidth)
	require.Equal(t, 8.0, g.PaddingX)
	require.Equal(t, layout.DefaultTabWidth, g.TabWidth)
	require.Equal(t, g, stage.Grid(), "stage lays out on the pixel grid")
}

func TestExporter_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, err := Export(context.Background(), newStage(), steps[:1], &bytes.Buffer{}, Options{FPS: 10, Tracer: tp.Tracer("test")})
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, tracing.SpanExport, spans[0].Name())
	require.Contains(t, spans[0].Attributes(), attribute.Int(tracing.AttrFrames, 6))
}

func TestCentiseconds(t *testing.T) {
	require.Equal(t, 3, centiseconds(time.Second/30))
	require.Equal(t, 100, centiseconds(time.Second))
	require.Equal(t, 2, centiseconds(time.Millisecond), "clamped to what viewers honour")
}

func TestBuildPalette(t *testing.T) {
	kw := token.RGB(0xf9, 0x26, 0x72)
	tr := emit.Transition{Instructions: []plan.Instruction{
		{Style: token.Style{Foreground: kw}},
		{Style: token.Style{Foreground: kw}},
	}}

	pal := buildPalette(background, token.RGB(0xff, 0xff, 0xff), []emit.Transition{tr})

	require.Len(t, pal, 256)
	require.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, pal[0])
	require.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, pal[1])
	require.Equal(t, color.NRGBA{R: 0xf9, G: 0x26, B: 0x72, A: 0xff}, pal[2])
}
