package highlight

import (
	"github.com/alecthomas/chroma/v2"

	"github.com/zjrosen/magicmove/internal/token"
	"github.com/zjrosen/magicmove/internal/tokenize"
)

// scope is an open span while the tree is being built.
type scope struct {
	kind  chroma.TokenType
	entry chroma.StyleEntry
	span  tokenize.Span
	start int
}

// treeBuilder nests chroma tokens as Category > SubCategory > Type spans.
// Consecutive tokens sharing a category share the enclosing span, and each
// span's style only lists what differs from its parent.
type treeBuilder struct {
	style  *chroma.Style
	root   scope
	stack  []*scope
	offset int
}

func newTreeBuilder(style *chroma.Style, size int) *treeBuilder {
	base := style.Get(chroma.Background)
	b := &treeBuilder{style: style}
	b.root = scope{
		kind:  chroma.Background,
		entry: base,
		span: tokenize.Span{
			Style: token.StyleSpec{
				Foreground: convertColour(base.Colour),
				Background: convertColour(base.Background),
				Bold:       trilean(base.Bold),
				Italic:     trilean(base.Italic),
				Underline:  trilean(base.Underline),
			},
			Range: &tokenize.Range{Start: 0, End: size},
		},
	}
	return b
}

func (b *treeBuilder) build(tokens []chroma.Token) tokenize.Span {
	for _, t := range tokens {
		if t.Value == "" {
			continue
		}
		b.add(t)
	}
	b.closeTo(0)
	return b.root.span
}

func (b *treeBuilder) add(t chroma.Token) {
	chain := chainOf(t.Type)

	keep := 0
	for keep < len(b.stack) && keep < len(chain) && b.stack[keep].kind == chain[keep] {
		keep++
	}
	b.closeTo(keep)

	for _, kind := range chain[keep:] {
		parent := b.top()
		entry := b.style.Get(kind)
		b.stack = append(b.stack, &scope{
			kind:  kind,
			entry: entry,
			start: b.offset,
			span: tokenize.Span{
				Kind:  kind.String(),
				Style: diff(parent.entry, entry),
			},
		})
	}

	end := b.offset + len(t.Value)
	leaf := tokenize.Span{Text: t.Value, Range: &tokenize.Range{Start: b.offset, End: end}}
	top := b.top()
	top.span.Children = append(top.span.Children, leaf)
	b.offset = end
}

func (b *treeBuilder) top() *scope {
	if len(b.stack) == 0 {
		return &b.root
	}
	return b.stack[len(b.stack)-1]
}

// closeTo pops open scopes until depth remain, attaching each to its parent.
func (b *treeBuilder) closeTo(depth int) {
	for len(b.stack) > depth {
		s := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]
		s.span.Range = &tokenize.Range{Start: s.start, End: b.offset}
		parent := b.top()
		parent.span.Children = append(parent.span.Children, s.span)
	}
}

// chainOf lists the nesting levels of a token type, outermost first.
func chainOf(t chroma.TokenType) []chroma.TokenType {
	if t < 0 {
		return []chroma.TokenType{t}
	}
	chain := make([]chroma.TokenType, 0, 3)
	for _, k := range []chroma.TokenType{t.Category(), t.SubCategory(), t} {
		if len(chain) == 0 || chain[len(chain)-1] != k {
			chain = append(chain, k)
		}
	}
	return chain
}

// diff returns the attributes of e that differ from parent.
func diff(parent, e chroma.StyleEntry) token.StyleSpec {
	var spec token.StyleSpec
	if e.Colour != parent.Colour && e.Colour.IsSet() {
		spec.Foreground = convertColour(e.Colour)
	}
	if e.Background != parent.Background && e.Background.IsSet() {
		spec.Background = convertColour(e.Background)
	}
	if e.Bold != parent.Bold {
		spec.Bold = trilean(e.Bold)
	}
	if e.Italic != parent.Italic {
		spec.Italic = trilean(e.Italic)
	}
	if e.Underline != parent.Underline {
		spec.Underline = trilean(e.Underline)
	}
	return spec
}

func convertColour(c chroma.Colour) token.Color {
	if !c.IsSet() {
		return token.Color{}
	}
	return token.RGB(c.Red(), c.Green(), c.Blue())
}

func trilean(t chroma.Trilean) token.Trilean {
	switch t {
	case chroma.Yes:
		return token.Yes
	case chroma.No:
		return token.No
	default:
		return token.Inherit
	}
}
