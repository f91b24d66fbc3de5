package host

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/zjrosen/magicmove/internal/emit"
	"github.com/zjrosen/magicmove/internal/engine"
	"github.com/zjrosen/magicmove/internal/layout"
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/token"
	"github.com/zjrosen/magicmove/internal/tokenize"
)

// Stage owns the state one container carries between transitions: the
// previous sequence and its rendered geometry. Calls are serialized.
type Stage struct {
	engine      *engine.Engine
	highlighter Highlighter
	grid        layout.Grid
	splitWords  bool

	mu       sync.Mutex
	prev     token.Sequence
	snapshot layout.Snapshot
}

// StageOption configures a Stage.
type StageOption func(*Stage)

// WithSplitWords splits identifiers from punctuation inside highlighted
// tokens so smaller fragments can move independently.
func WithSplitWords(split bool) StageOption {
	return func(s *Stage) { s.splitWords = split }
}

// NewStage returns an empty Stage placing tokens on grid.
func NewStage(e *engine.Engine, h Highlighter, grid layout.Grid, opts ...StageOption) *Stage {
	s := &Stage{engine: e, highlighter: h, grid: grid}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Grid returns the layout grid.
func (s *Stage) Grid() layout.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

// SetGrid changes the layout used from the next Advance on, for example
// after a terminal resize.
func (s *Stage) SetGrid(g layout.Grid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid = g
}

// Tokens highlights and normalizes p without placing it. The error is
// non-nil only when highlighting failed; recovered span problems are
// returned in warnings.
func (s *Stage) Tokens(ctx context.Context, p Payload) (seq token.Sequence, warnings error, err error) {
	root, err := s.highlighter.Highlight(ctx, p.Source, p.Language)
	if err != nil {
		return nil, nil, fmt.Errorf("highlighting %s: %w", p.Path, err)
	}

	opts := []tokenize.Option{tokenize.WithSplitWords(s.splitWords)}
	if p.TabWidth > 0 {
		opts = append(opts, tokenize.WithTabWidth(p.TabWidth))
	}
	seq, warnings = tokenize.Normalize(root, opts...)
	return seq, warnings, nil
}

// Advance computes the transition from the retained state to p and makes
// p the retained state.
func (s *Stage) Advance(ctx context.Context, p Payload) (emit.Transition, error) {
	next, warnings, err := s.Tokens(ctx, p)
	if err != nil {
		return emit.Transition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	grid := s.grid
	if p.TabWidth > 0 {
		grid.TabWidth = p.TabWidth
	}
	placed := grid.Place(next)

	tr := s.engine.Transition(ctx, s.prev, placed, s.snapshot, layout.Resolver{Grid: grid})
	tr.Warnings = multierr.Append(warnings, tr.Warnings)

	s.prev = placed
	s.snapshot = layout.NewSnapshot(placed)

	log.Debug(log.CatRender, "stage advanced",
		"path", p.Path, "tokens", len(placed), "lines", placed.Lines(),
		"placed", s.snapshot.Len(), "has_changes", tr.HasChanges)
	return tr, nil
}

// Reset forgets the retained state so the next Advance fades everything in.
func (s *Stage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prev = nil
	s.snapshot = layout.Snapshot{}
}

// Previous returns the retained sequence.
func (s *Stage) Previous() token.Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prev
}
