// Package gif renders transitions to an animated GIF.
package gif

import (
	"context"
	"errors"
	"fmt"
	stdgif "image/gif"
	"io"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/magicmove/internal/emit"
	"github.com/zjrosen/magicmove/internal/host"
	"github.com/zjrosen/magicmove/internal/layout"
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/token"
	"github.com/zjrosen/magicmove/internal/tracing"
)

// Defaults applied to zero Options fields.
const (
	DefaultFPS         = 30
	DefaultFontSize    = 16
	DefaultLineSpacing = 1.4
	DefaultPadding     = 24
	DefaultHold        = time.Second
)

// Options configures the exported animation.
type Options struct {
	FPS         int
	FontSize    float64
	LineSpacing float64
	// Padding surrounds the code on every side, in pixels.
	Padding float64
	// Hold keeps the last frame of every transition on screen.
	Hold time.Duration
	// NoLoop plays the animation once instead of forever.
	NoLoop bool

	Background token.Color
	Foreground token.Color
	Tracer     trace.Tracer
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.LineSpacing <= 0 {
		o.LineSpacing = DefaultLineSpacing
	}
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.Hold <= 0 {
		o.Hold = DefaultHold
	}
	if !o.Background.IsSet() {
		o.Background = token.RGB(0x27, 0x28, 0x22)
	}
	if !o.Foreground.IsSet() {
		o.Foreground = token.RGB(0xf8, 0xf8, 0xf2)
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer(tracing.ServiceName)
	}
	return o
}

// Exporter is the GIF host.Renderer. Mount and Update collect transitions;
// Dispose renders every frame and writes the file.
type Exporter struct {
	stage   *host.Stage
	w       io.Writer
	opts    Options
	faces   faces
	metrics metrics

	mu          sync.Mutex
	transitions []emit.Transition
	mounted     bool
	disposed    bool
	frames      int
}

var _ host.Renderer = (*Exporter)(nil)

// NewExporter lays stage out on the pixel grid of the configured font and
// writes the animation to w on Dispose.
func NewExporter(stage *host.Stage, w io.Writer, opts Options) (*Exporter, error) {
	opts = opts.withDefaults()
	fs, err := loadFaces(opts.FontSize)
	if err != nil {
		return nil, err
	}
	e := &Exporter{
		stage:   stage,
		w:       w,
		opts:    opts,
		faces:   fs,
		metrics: measure(fs[0], opts.LineSpacing),
	}
	stage.SetGrid(e.Grid())
	return e, nil
}

// Grid returns the pixel layout the exporter places tokens on.
func (e *Exporter) Grid() layout.Grid {
	return layout.Grid{
		CellWidth:  e.metrics.cellWidth,
		LineHeight: e.metrics.lineHeight,
		PaddingX:   e.opts.Padding,
		PaddingY:   e.opts.Padding,
		TabWidth:   e.stage.Grid().TabWidth,
	}
}

// Mount records the fade-in of the first state.
func (e *Exporter) Mount(ctx context.Context, p host.Payload) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return host.ErrDisposed
	}
	if err := e.advance(ctx, p); err != nil {
		return err
	}
	e.mounted = true
	return nil
}

// Update records the transition to p.
func (e *Exporter) Update(ctx context.Context, p host.Payload) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.disposed:
		return host.ErrDisposed
	case !e.mounted:
		return host.ErrNotMounted
	}
	return e.advance(ctx, p)
}

func (e *Exporter) advance(ctx context.Context, p host.Payload) error {
	tr, err := e.stage.Advance(ctx, p)
	if err != nil {
		return err
	}
	if tr.Warnings != nil {
		log.Warn(log.CatRender, "exporting approximate transition", "path", p.Path, "warnings", tr.Warnings)
	}
	e.transitions = append(e.transitions, tr)
	return nil
}

// Frames returns the number of frames written by Dispose.
func (e *Exporter) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Dispose renders and writes the animation. Calling it again is a no-op.
func (e *Exporter) Dispose() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return nil
	}
	e.disposed = true
	if !e.mounted {
		return nil
	}
	return e.encode(context.Background())
}

func (e *Exporter) encode(ctx context.Context) (err error) {
	_, span := e.opts.Tracer.Start(ctx, tracing.SpanExport)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	p := e.painter()
	pal := buildPalette(e.opts.Background, e.opts.Foreground, e.transitions)
	out := &stdgif.GIF{}
	if e.opts.NoLoop {
		out.LoopCount = -1
	}

	step := time.Second / time.Duration(e.opts.FPS)
	delay := centiseconds(step)
	for _, tr := range e.transitions {
		n := int(math.Ceil(tr.TotalDuration.Seconds() * float64(e.opts.FPS)))
		for i := 0; i <= n; i++ {
			elapsed := min(time.Duration(i)*step, tr.TotalDuration)
			out.Image = append(out.Image, quantize(p.frame(tr, elapsed), pal))
			out.Delay = append(out.Delay, delay)
		}
		out.Delay[len(out.Delay)-1] = centiseconds(e.opts.Hold)
	}

	if err = stdgif.EncodeAll(e.w, out); err != nil {
		return fmt.Errorf("encoding gif: %w", err)
	}
	e.frames = len(out.Image)

	span.SetAttributes(attribute.Int(tracing.AttrFrames, e.frames))
	log.Info(log.CatRender, "gif exported",
		"frames", e.frames, "transitions", len(e.transitions), "width", p.width, "height", p.height)
	return nil
}

// painter sizes the canvas to fit every transition so all frames share
// one size.
func (e *Exporter) painter() *painter {
	var w, h float64
	for _, tr := range e.transitions {
		tw, th := tr.Size()
		w = max(w, tw)
		h = max(h, th)
	}
	return &painter{
		faces:      e.faces,
		metrics:    e.metrics,
		width:      max(int(math.Ceil(w+e.opts.Padding)), 1),
		height:     max(int(math.Ceil(h+e.opts.Padding)), 1),
		background: e.opts.Background,
		foreground: e.opts.Foreground,
	}
}

// centiseconds converts to GIF delay units, never below the 2cs most
// viewers honour.
func centiseconds(d time.Duration) int {
	return max(int(math.Round(d.Seconds()*100)), 2)
}

// Export writes the transitions through steps to w.
func Export(ctx context.Context, stage *host.Stage, steps []host.Payload, w io.Writer, opts Options) (int, error) {
	if len(steps) == 0 {
		return 0, errors.New("nothing to export")
	}
	e, err := NewExporter(stage, w, opts)
	if err != nil {
		return 0, err
	}
	if err := e.Mount(ctx, steps[0]); err != nil {
		return 0, err
	}
	for _, p := range steps[1:] {
		if err := e.Update(ctx, p); err != nil {
			return 0, err
		}
	}
	if err := e.Dispose(); err != nil {
		return 0, err
	}
	return e.Frames(), nil
}
