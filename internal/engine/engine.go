// Package engine is the explicit "transition requested" entry point: it
// runs match, plan and emit for one pair of code states.
package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/multierr"

	"github.com/zjrosen/magicmove/internal/emit"
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/match"
	"github.com/zjrosen/magicmove/internal/plan"
	"github.com/zjrosen/magicmove/internal/token"
	"github.com/zjrosen/magicmove/internal/tracing"
)

// Engine computes transitions. It holds configuration only, so one Engine
// may serve many containers concurrently.
type Engine struct {
	cfg    plan.Config
	tracer trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracer records a span per phase.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// New creates an Engine planning with cfg.
func New(cfg plan.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		tracer: noop.NewTracerProvider().Tracer(tracing.ServiceName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the planner configuration.
func (e *Engine) Config() plan.Config {
	return e.cfg
}

// Transition diffs prev against next. Geometry callbacks resolve each
// side's rectangles on demand; nil reads the rect stored on the tokens.
// The computation is synchronous; ctx only carries the trace.
func (e *Engine) Transition(ctx context.Context, prev, next token.Sequence, prevGeom, nextGeom plan.Geometry) emit.Transition {
	ctx, span := e.tracer.Start(ctx, tracing.SpanTransition, trace.WithAttributes(
		attribute.Int(tracing.AttrPrevTokens, len(prev)),
		attribute.Int(tracing.AttrNextTokens, len(next)),
	))
	defer span.End()

	_, ms := e.tracer.Start(ctx, tracing.SpanMatch)
	m := match.Match(prev, next)
	ms.SetAttributes(
		attribute.Int(tracing.AttrMatchedByID, m.ByID),
		attribute.Int(tracing.AttrMatchedByTxt, m.ByText),
	)
	ms.End()

	_, ps := e.tracer.Start(ctx, tracing.SpanPlan)
	p := plan.Plan(prev, next, m.Pairings, prevGeom, nextGeom, e.cfg)
	ps.SetAttributes(attribute.Int(tracing.AttrApproximate, len(multierr.Errors(p.Warnings))))
	ps.End()

	_, es := e.tracer.Start(ctx, tracing.SpanEmit)
	tr := emit.Emit(p, e.cfg)
	es.End()

	span.SetAttributes(
		attribute.Bool(tracing.AttrHasChanges, tr.HasChanges),
		attribute.Int(tracing.AttrUnchanged, tr.Counts.Unchanged),
		attribute.Int(tracing.AttrMoved, tr.Counts.Moved),
		attribute.Int(tracing.AttrAdded, tr.Counts.Added),
		attribute.Int(tracing.AttrRemoved, tr.Counts.Removed),
		attribute.Int64(tracing.AttrDurationMs, tr.TotalDuration.Milliseconds()),
	)

	log.Debug(log.CatPlan, "transition computed",
		"prev", len(prev), "next", len(next),
		"unchanged", tr.Counts.Unchanged, "moved", tr.Counts.Moved,
		"added", tr.Counts.Added, "removed", tr.Counts.Removed,
		"has_changes", tr.HasChanges, "duration", tr.TotalDuration)
	return tr
}
