// Package plan turns token pairings into per-token animation instructions.
//
// The planner only decides start and end states. Sampling frames between
// them is left to the host, see package interp.
package plan

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"go.uber.org/multierr"

	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/match"
	"github.com/zjrosen/magicmove/internal/token"
)

// Kind classifies an instruction.
type Kind int

const (
	KindUnchanged Kind = iota
	KindMoved
	KindAdded
	KindRemoved
)

var kindNames = [...]string{"unchanged", "moved", "added", "removed"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown instruction kind %q", b)
}

// State is one end of an instruction.
type State struct {
	X       float64     `json:"x" yaml:"x"`
	Y       float64     `json:"y" yaml:"y"`
	Width   float64     `json:"width" yaml:"width"`
	Height  float64     `json:"height" yaml:"height"`
	Opacity float64     `json:"opacity" yaml:"opacity"`
	Color   token.Color `json:"color" yaml:"color"`
	// Background is painted behind the fragment when set.
	Background token.Color `json:"background" yaml:"background,omitempty"`
}

// Rect returns the state's geometry.
func (s State) Rect() token.Rect {
	return token.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

func stateOf(r token.Rect, st token.Style) State {
	return State{
		X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
		Opacity:    1,
		Color:      st.Foreground,
		Background: st.Background,
	}
}

func (s State) shifted(o Offset) State {
	s.X += o.X
	s.Y += o.Y
	return s
}

// Instruction is the per-token output unit handed to hosts.
type Instruction struct {
	Kind Kind `json:"kind" yaml:"kind"`
	// Ref is the handle back to the host-rendered fragment: the next
	// token's id, or the previous token's id for removed fragments.
	Ref   token.ID    `json:"ref" yaml:"ref"`
	Text  string      `json:"text" yaml:"text"`
	Style token.Style `json:"style" yaml:"style"`
	Start State       `json:"start" yaml:"start"`
	End   State       `json:"end" yaml:"end"`

	Delay    time.Duration `json:"delay" yaml:"delay"`
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Approximate is set when either end used fallback geometry.
	Approximate bool `json:"approximate,omitempty" yaml:"approximate,omitempty"`

	// Prev and Next index the source sequences, -1 when absent.
	Prev int `json:"prev" yaml:"prev"`
	Next int `json:"next" yaml:"next"`
}

// Animated reports whether the instruction has anything to interpolate.
func (in Instruction) Animated() bool {
	return in.Kind != KindUnchanged
}

// Offset is a displacement in host coordinates.
type Offset struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// IsZero reports whether the offset moves nothing.
func (o Offset) IsZero() bool { return o.X == 0 && o.Y == 0 }

// Config holds the timing and placement options hosts pass through.
type Config struct {
	Duration time.Duration
	// Stagger delays each animated instruction by its ordinal times Stagger.
	Stagger time.Duration
	// Easing names the curve hosts sample with, see interp.Lookup.
	Easing      string
	EntryOffset Offset
	ExitOffset  Offset
	// CollapseUnchanged gives unchanged instructions zero duration.
	CollapseUnchanged bool
}

// DefaultConfig returns the planner defaults.
func DefaultConfig() Config {
	return Config{
		Duration: 500 * time.Millisecond,
		Easing:   "ease-in-out",
	}
}

// Result is the planner output.
type Result struct {
	Instructions []Instruction
	// Warnings aggregates non-fatal *GeometryUnavailableError values.
	Warnings error
}

// Plan converts pairings between prev and next into instructions. Matched
// and added instructions follow next order; removed instructions follow,
// in prev order, so hosts paint them underneath the new content.
func Plan(prev, next token.Sequence, pairings []match.Pairing, prevGeom, nextGeom Geometry, cfg Config) Result {
	ordered := slices.Clone(pairings)
	slices.SortStableFunc(ordered, func(a, b match.Pairing) int {
		ar, br := a.Removed(), b.Removed()
		switch {
		case ar && !br:
			return 1
		case !ar && br:
			return -1
		case ar && br:
			return cmp.Compare(a.Prev, b.Prev)
		default:
			return cmp.Compare(a.Next, b.Next)
		}
	})

	before := newResolver("previous", prev, prevGeom)
	after := newResolver("next", next, nextGeom)

	res := Result{Instructions: make([]Instruction, 0, len(ordered))}
	animated := 0
	for _, p := range ordered {
		in := Instruction{Prev: p.Prev, Next: p.Next}

		switch {
		case p.Matched():
			pt, nt := prev[p.Prev], next[p.Next]
			startRect, approxStart := before.rect(p.Prev)
			endRect, approxEnd := after.rect(p.Next)
			in.Ref, in.Text, in.Style = nt.ID, nt.Text, nt.Style
			in.Start = stateOf(startRect, pt.Style)
			in.End = stateOf(endRect, nt.Style)
			in.Approximate = approxStart || approxEnd
			in.Kind = KindMoved
			if startRect.SamePosition(endRect) && pt.Style == nt.Style {
				in.Kind = KindUnchanged
			}

		case p.Added():
			nt := next[p.Next]
			endRect, approx := after.rect(p.Next)
			in.Kind = KindAdded
			in.Ref, in.Text, in.Style = nt.ID, nt.Text, nt.Style
			in.End = stateOf(endRect, nt.Style)
			in.Start = in.End.shifted(cfg.EntryOffset)
			in.Start.Opacity = 0
			in.Approximate = approx

		case p.Removed():
			pt := prev[p.Prev]
			startRect, approx := before.rect(p.Prev)
			in.Kind = KindRemoved
			in.Ref, in.Text, in.Style = pt.ID, pt.Text, pt.Style
			in.Start = stateOf(startRect, pt.Style)
			in.End = in.Start.shifted(cfg.ExitOffset)
			in.End.Opacity = 0
			in.Approximate = approx

		default:
			continue
		}

		if in.Animated() {
			in.Delay = time.Duration(animated) * cfg.Stagger
			in.Duration = cfg.Duration
			animated++
		} else if !cfg.CollapseUnchanged {
			in.Duration = cfg.Duration
		}
		res.Instructions = append(res.Instructions, in)
	}

	res.Warnings = multierr.Combine(before.warnings, after.warnings)
	if res.Warnings != nil {
		log.Warn(log.CatPlan, "planned with approximate geometry",
			"count", len(multierr.Errors(res.Warnings)))
	}
	log.Debug(log.CatPlan, "planned instructions",
		"instructions", len(res.Instructions), "animated", animated)
	return res
}
