package match

import (
	"cmp"
	"slices"
	"sort"
)

type candidate struct {
	index int
	line  int
	col   int
}

func (c candidate) before(line, col int) bool {
	return c.line < line || (c.line == line && c.col < col)
}

// distance orders candidates by line displacement, then column
// displacement.
func (c candidate) distance(line, col int) (int, int) {
	return abs(c.line - line), abs(c.col - col)
}

// pool holds unconsumed previous tokens sharing one text, sorted by
// position.
type pool struct {
	items []candidate
}

func (p *pool) add(c candidate) {
	p.items = append(p.items, c)
}

func (p *pool) sort() {
	slices.SortStableFunc(p.items, func(a, b candidate) int {
		if c := cmp.Compare(a.line, b.line); c != 0 {
			return c
		}
		if c := cmp.Compare(a.col, b.col); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})
}

func (p *pool) empty() bool {
	return len(p.items) == 0
}

// takeNearest removes and returns the index of the candidate closest to
// (line, col). Equal distances resolve to the earlier candidate.
func (p *pool) takeNearest(line, col int) int {
	at := sort.Search(len(p.items), func(k int) bool {
		return !p.items[k].before(line, col)
	})

	best := -1
	var bestLine, bestCol int
	consider := func(k int) {
		dl, dc := p.items[k].distance(line, col)
		if best < 0 || dl < bestLine || (dl == bestLine && dc < bestCol) ||
			(dl == bestLine && dc == bestCol && p.items[k].index < p.items[best].index) {
			best, bestLine, bestCol = k, dl, dc
		}
	}

	// Walk outwards from the insertion point; stop a side once its line
	// distance exceeds the best found.
	for k := at - 1; k >= 0; k-- {
		if best >= 0 && abs(p.items[k].line-line) > bestLine {
			break
		}
		consider(k)
	}
	for k := at; k < len(p.items); k++ {
		if best >= 0 && abs(p.items[k].line-line) > bestLine {
			break
		}
		consider(k)
	}

	index := p.items[best].index
	p.items = slices.Delete(p.items, best, best+1)
	return index
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
