package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/magicmove/internal/tokenize"
)

// SegmentKind says whether a diff segment is shared, inserted or deleted.
type SegmentKind int

const (
	SegmentEqual SegmentKind = iota
	SegmentInsert
	SegmentDelete
)

// Segment is a run of text with its diff status.
type Segment struct {
	Kind SegmentKind
	Text string
}

// wordRunes interns words as runes so diffmatchpatch diffs whole words.
type wordRunes struct {
	index map[string]rune
	words []string
}

func (w *wordRunes) encode(s string) []rune {
	ws := tokenize.SplitWords(s)
	out := make([]rune, len(ws))
	for i, word := range ws {
		r, ok := w.index[word]
		if !ok {
			r = runeFor(len(w.words))
			w.index[word] = r
			w.words = append(w.words, word)
		}
		out[i] = r
	}
	return out
}

func (w *wordRunes) decode(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteString(w.words[indexFor(r)])
	}
	return b.String()
}

// Words are interned into the private use areas so they never collide
// with the letters, spaces or surrogates diffmatchpatch inspects.
const (
	privateUseStart       = 0xE000
	privateUseSize        = 0x1900
	supplementaryPUAStart = 0xF0000
)

func runeFor(i int) rune {
	if i < privateUseSize {
		return privateUseStart + rune(i)
	}
	return supplementaryPUAStart + rune(i-privateUseSize)
}

func indexFor(r rune) int {
	if r >= supplementaryPUAStart {
		return int(r-supplementaryPUAStart) + privateUseSize
	}
	return int(r - privateUseStart)
}

// WordDiff returns the word level diff from a to b.
func WordDiff(a, b string) []Segment {
	switch {
	case a == b && a == "":
		return nil
	case a == "":
		return []Segment{{Kind: SegmentInsert, Text: b}}
	case b == "":
		return []Segment{{Kind: SegmentDelete, Text: a}}
	}

	w := &wordRunes{index: make(map[string]rune)}
	ra, rb := w.encode(a), w.encode(b)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMainRunes(ra, rb, false))

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		kind := SegmentEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = SegmentInsert
		case diffmatchpatch.DiffDelete:
			kind = SegmentDelete
		}
		segments = append(segments, Segment{Kind: kind, Text: w.decode(d.Text)})
	}
	return segments
}

// Wdiff renders segments in wdiff notation: [-deleted-]{+inserted+}.
func Wdiff(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		switch s.Kind {
		case SegmentInsert:
			b.WriteString("{+" + s.Text + "+}")
		case SegmentDelete:
			b.WriteString("[-" + s.Text + "-]")
		default:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
