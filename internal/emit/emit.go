// Package emit packages planned instructions with the transition-level
// metadata hosts need before drawing the first frame.
package emit

import (
	"time"

	"github.com/zjrosen/magicmove/internal/plan"
	"github.com/zjrosen/magicmove/internal/token"
)

// Counts tallies instructions per kind.
type Counts struct {
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Moved     int `json:"moved" yaml:"moved"`
	Added     int `json:"added" yaml:"added"`
	Removed   int `json:"removed" yaml:"removed"`
}

// Total returns the number of instructions counted.
func (c Counts) Total() int {
	return c.Unchanged + c.Moved + c.Added + c.Removed
}

func (c *Counts) add(k plan.Kind) {
	switch k {
	case plan.KindUnchanged:
		c.Unchanged++
	case plan.KindMoved:
		c.Moved++
	case plan.KindAdded:
		c.Added++
	case plan.KindRemoved:
		c.Removed++
	}
}

// Transition is everything a host needs to run one animation.
type Transition struct {
	Instructions []plan.Instruction `json:"instructions" yaml:"instructions"`
	// Bounds covers every start and end rectangle.
	Bounds        token.Rect    `json:"bounds" yaml:"bounds"`
	HasChanges    bool          `json:"has_changes" yaml:"has_changes"`
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`
	Easing        string        `json:"easing" yaml:"easing"`
	Counts        Counts        `json:"counts" yaml:"counts"`
	// Warnings holds non-fatal planning problems, nil when there were none.
	Warnings error `json:"-" yaml:"-"`
}

// Size returns the buffer dimensions needed to draw every frame, measured
// from the host origin.
func (t Transition) Size() (width, height float64) {
	return t.Bounds.Right(), t.Bounds.Bottom()
}

// Empty reports whether there is nothing to draw.
func (t Transition) Empty() bool {
	return len(t.Instructions) == 0
}

// Emit aggregates a plan into a Transition. An empty plan yields an empty
// Transition with HasChanges false.
func Emit(res plan.Result, cfg plan.Config) Transition {
	tr := Transition{
		Instructions: res.Instructions,
		Easing:       cfg.Easing,
		Warnings:     res.Warnings,
	}
	for _, in := range res.Instructions {
		tr.Counts.add(in.Kind)
		tr.Bounds = tr.Bounds.Union(in.Start.Rect()).Union(in.End.Rect())
		if in.Animated() {
			tr.HasChanges = true
		}
		if end := in.Delay + in.Duration; end > tr.TotalDuration {
			tr.TotalDuration = end
		}
	}
	return tr
}
