// Package match aligns the tokens of two code states.
//
// Matching runs in two greedy phases:
//
//	previous ──┐                      ┌── unchanged / moved (by id)
//	           ├─ 1. exact id  ───────┤
//	next ──────┘        │             └── rest
//	                    v
//	            2. same text, nearest (line, column)
//	                    │
//	                    ├── paired (by content)
//	                    └── removed (previous) / added (next)
//
// The content phase is greedy in next order. It is not a globally optimal
// assignment.
package match

import (
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/token"
)

// Phase records which step produced a pairing.
type Phase int

const (
	PhaseNone Phase = iota // added or removed
	PhaseID
	PhaseContent
)

func (p Phase) String() string {
	switch p {
	case PhaseID:
		return "id"
	case PhaseContent:
		return "content"
	default:
		return "none"
	}
}

// Pairing relates at most one previous token to at most one next token by
// index. An absent side is -1.
type Pairing struct {
	Prev  int
	Next  int
	Phase Phase
}

// Matched reports whether both sides are present.
func (p Pairing) Matched() bool { return p.Prev >= 0 && p.Next >= 0 }

// Added reports whether only the next side is present.
func (p Pairing) Added() bool { return p.Prev < 0 && p.Next >= 0 }

// Removed reports whether only the previous side is present.
func (p Pairing) Removed() bool { return p.Prev >= 0 && p.Next < 0 }

// Result is the full pairing set of one transition.
type Result struct {
	// Pairings lists next-side pairings in next order, followed by removed
	// pairings in previous order.
	Pairings []Pairing
	ByID     int
	ByText   int
	Added    int
	Removed  int
}

// Match pairs previous against next. Every previous token and every next
// token appears in exactly one pairing, and paired tokens always share
// their text.
func Match(prev, next token.Sequence) Result {
	prevUsed := make([]bool, len(prev))
	nextTo := make([]int, len(next))
	phase := make([]Phase, len(next))
	for j := range nextTo {
		nextTo[j] = -1
	}

	res := Result{}
	res.ByID = matchByID(prev, next, prevUsed, nextTo, phase)
	res.ByText = matchByContent(prev, next, prevUsed, nextTo, phase)

	res.Pairings = make([]Pairing, 0, len(prev)+len(next)-res.ByID-res.ByText)
	for j, i := range nextTo {
		if i < 0 {
			res.Added++
		}
		res.Pairings = append(res.Pairings, Pairing{Prev: i, Next: j, Phase: phase[j]})
	}
	for i, used := range prevUsed {
		if !used {
			res.Removed++
			res.Pairings = append(res.Pairings, Pairing{Prev: i, Next: -1})
		}
	}

	log.Debug(log.CatMatch, "matched sequences",
		"prev", len(prev), "next", len(next),
		"by_id", res.ByID, "by_text", res.ByText,
		"added", res.Added, "removed", res.Removed)
	return res
}

type idKey struct {
	id   token.ID
	text string
}

// matchByID pairs tokens with identical ids in order of first occurrence in
// next. Each previous token is consumed at most once; duplicate ids on the
// previous side are handed out first-in first-out.
func matchByID(prev, next token.Sequence, prevUsed []bool, nextTo []int, phase []Phase) int {
	queues := make(map[idKey][]int, len(prev))
	for i, t := range prev {
		k := idKey{id: t.ID, text: t.Text}
		queues[k] = append(queues[k], i)
	}

	n := 0
	for j, t := range next {
		k := idKey{id: t.ID, text: t.Text}
		q := queues[k]
		if len(q) == 0 {
			continue
		}
		i := q[0]
		queues[k] = q[1:]
		prevUsed[i] = true
		nextTo[j] = i
		phase[j] = PhaseID
		n++
	}
	return n
}

// matchByContent pairs leftover tokens with equal text, nearest position
// first, walking next in ascending order.
func matchByContent(prev, next token.Sequence, prevUsed []bool, nextTo []int, phase []Phase) int {
	pools := make(map[string]*pool)
	for i, t := range prev {
		if prevUsed[i] {
			continue
		}
		p := pools[t.Text]
		if p == nil {
			p = &pool{}
			pools[t.Text] = p
		}
		p.add(candidate{index: i, line: t.Line, col: t.Column})
	}
	if len(pools) == 0 {
		return 0
	}
	for _, p := range pools {
		p.sort()
	}

	n := 0
	for j, t := range next {
		if nextTo[j] >= 0 {
			continue
		}
		p := pools[t.Text]
		if p == nil || p.empty() {
			continue
		}
		i := p.takeNearest(t.Line, t.Column)
		prevUsed[i] = true
		nextTo[j] = i
		phase[j] = PhaseContent
		n++
	}
	return n
}
