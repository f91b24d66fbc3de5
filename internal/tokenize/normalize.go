package tokenize

import (
	"strings"
	"unicode"

	"go.uber.org/multierr"

	"github.com/zjrosen/magicmove/internal/layout"
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/token"
)

type options struct {
	tabWidth   int
	splitWords bool
}

// Option configures Normalize.
type Option func(*options)

// WithTabWidth sets the tab stop used to compute display columns.
func WithTabWidth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.tabWidth = n
		}
	}
}

// WithSplitWords splits leaf text into words and punctuation so long
// highlighter tokens (comments, strings) animate piecewise.
func WithSplitWords(split bool) Option {
	return func(o *options) {
		o.splitWords = split
	}
}

type normalizer struct {
	opts        options
	rootBg      token.Color
	line        int
	col         int
	occurrences map[string]int
	seq         token.Sequence
	errs        error
}

// Normalize flattens root into leaf tokens with resolved styles and derived
// ids. Malformed spans are recovered as leaves; the returned error, when
// non-nil, only lists those recoveries and the sequence is still complete.
func Normalize(root Span, opts ...Option) (token.Sequence, error) {
	o := options{tabWidth: layout.DefaultTabWidth}
	for _, opt := range opts {
		opt(&o)
	}

	rootStyle := root.Style.Resolve(token.Style{})
	n := &normalizer{
		opts:        o,
		rootBg:      rootStyle.Background,
		occurrences: make(map[string]int),
	}
	n.walk(root, token.Style{}, "")

	log.Debug(log.CatTokenize, "normalized span tree", "tokens", len(n.seq), "lines", n.line+1)
	return n.seq, n.errs
}

func (n *normalizer) walk(s Span, parent token.Style, path string) {
	style := s.Style.Resolve(parent)
	if s.Kind != "" {
		if path != "" {
			path += "/"
		}
		path += s.Kind
	}

	if len(s.Children) == 0 {
		n.leaf(s.Text, style, path)
		return
	}

	if reason := s.check(); reason != "" {
		err := &MalformedTreeError{Path: path, Reason: reason}
		log.Warn(log.CatTokenize, "recovering malformed span as leaf", "path", path, "reason", reason)
		n.errs = multierr.Append(n.errs, err)
		text := s.Text
		if text == "" {
			text = s.Flatten()
		}
		n.leaf(text, style, path)
		return
	}

	for _, c := range s.Children {
		n.walk(c, style, path)
	}
}

func (n *normalizer) leaf(text string, style token.Style, path string) {
	for i, segment := range strings.Split(text, "\n") {
		if i > 0 {
			n.line++
			n.col = 0
		}
		n.segment(segment, style, path)
	}
}

func (n *normalizer) segment(s string, style token.Style, path string) {
	if s == "" {
		return
	}
	if n.boundary(style) {
		n.emit(s, style, path)
		return
	}
	for _, piece := range pieces(s, n.opts.splitWords) {
		// Unstyled whitespace and zero-width runs fold into the gap.
		if cells := layout.Cells(piece, n.col, n.opts.tabWidth); cells == 0 || isBlank(piece) {
			n.col += cells
			continue
		}
		n.emit(piece, style, path)
	}
}

// boundary reports whether whitespace in this style is visible.
func (n *normalizer) boundary(style token.Style) bool {
	if style.Underline {
		return true
	}
	return style.Background.IsSet() && style.Background != n.rootBg
}

func (n *normalizer) emit(text string, style token.Style, path string) {
	key := text + "\x00" + path
	occ := n.occurrences[key]
	n.occurrences[key] = occ + 1

	n.seq = append(n.seq, token.Token{
		ID:     token.DeriveID(text, path, occ),
		Text:   text,
		Style:  style,
		Line:   n.line,
		Column: n.col,
		Path:   path,
	})
	n.col += layout.Cells(text, n.col, n.opts.tabWidth)
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

// pieces cuts s into leading whitespace, content and trailing whitespace.
// With words set, content is further cut into words, single punctuation
// characters and whitespace runs.
func pieces(s string, words bool) []string {
	core := strings.TrimFunc(s, unicode.IsSpace)
	if core == "" {
		return []string{s}
	}
	start := strings.Index(s, core)
	out := make([]string, 0, 3)
	if start > 0 {
		out = append(out, s[:start])
	}
	if words {
		out = append(out, SplitWords(core)...)
	} else {
		out = append(out, core)
	}
	if end := start + len(core); end < len(s) {
		out = append(out, s[end:])
	}
	return out
}

// SplitWords splits text into word runs, whitespace runs and single
// punctuation or symbol characters. Underscores belong to words so
// identifiers stay whole. Tokens and report diffs both cut text this way.
// Example: "foo.bar(x, y)" → ["foo", ".", "bar", "(", "x", ",", " ", "y", ")"]
func SplitWords(s string) []string {
	var (
		out     []string
		current strings.Builder
		inSpace bool
	)
	flush := func() {
		if current.Len() > 0 {
			out = append(out, current.String())
			current.Reset()
		}
	}

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				flush()
			}
			inSpace = true
			current.WriteRune(r)
		case (unicode.IsPunct(r) || unicode.IsSymbol(r)) && r != '_':
			flush()
			inSpace = false
			out = append(out, string(r))
		default:
			if inSpace {
				flush()
			}
			inSpace = false
			current.WriteRune(r)
		}
	}
	flush()
	return out
}
