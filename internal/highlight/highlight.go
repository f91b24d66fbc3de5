// Package highlight turns source text into the nested span tree consumed by
// package tokenize, using chroma lexers and styles.
package highlight

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/magicmove/internal/cachemanager"
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/token"
	"github.com/zjrosen/magicmove/internal/tokenize"
	"github.com/zjrosen/magicmove/internal/tracing"
)

// DefaultTheme is the chroma style used when none is configured.
const DefaultTheme = "monokai"

// Key identifies a cached highlight.
type Key string

type request struct {
	source   string
	language string
}

// Highlighter produces span trees for one chroma style.
type Highlighter struct {
	theme  string
	style  *chroma.Style
	ttl    time.Duration
	cache  *cachemanager.ReadThroughCache[Key, tokenize.Span, request]
	mem    *cachemanager.InMemory[Key, tokenize.Span]
	tracer trace.Tracer
}

// Option configures a Highlighter.
type Option func(*highlighterOptions)

type highlighterOptions struct {
	ttl     time.Duration
	noCache bool
	tracer  trace.Tracer
}

// WithCacheTTL sets how long highlighted sources are kept.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *highlighterOptions) { o.ttl = ttl }
}

// WithoutCache highlights every call from scratch.
func WithoutCache() Option {
	return func(o *highlighterOptions) { o.noCache = true }
}

// WithTracer records a span per highlight.
func WithTracer(t trace.Tracer) Option {
	return func(o *highlighterOptions) { o.tracer = t }
}

// New returns a Highlighter for the named chroma style. Unknown names fall
// back to chroma's default style.
func New(theme string, opts ...Option) *Highlighter {
	o := highlighterOptions{ttl: cachemanager.DefaultExpiration}
	for _, opt := range opts {
		opt(&o)
	}
	if theme == "" {
		theme = DefaultTheme
	}
	if _, ok := styles.Registry[theme]; !ok {
		log.Warn(log.CatHighlight, "unknown theme, using fallback", "theme", theme, "fallback", styles.Fallback.Name)
	}

	h := &Highlighter{
		theme:  theme,
		style:  styles.Get(theme),
		ttl:    o.ttl,
		tracer: o.tracer,
	}
	if h.tracer == nil {
		h.tracer = noop.NewTracerProvider().Tracer(tracing.ServiceName)
	}
	h.mem = cachemanager.NewInMemory[Key, tokenize.Span]("highlight", o.ttl, cachemanager.DefaultCleanupInterval)
	h.cache = cachemanager.NewReadThroughCache[Key, tokenize.Span, request](h.mem, h.build, o.noCache)
	return h
}

// Theme returns the resolved style name.
func (h *Highlighter) Theme() string {
	return h.style.Name
}

// CacheStats reports how often highlighted sources were reused.
func (h *Highlighter) CacheStats() cachemanager.Stats {
	return h.mem.Stats()
}

// Background returns the style's background colour.
func (h *Highlighter) Background() token.Color {
	return convertColour(h.style.Get(chroma.Background).Background)
}

// Foreground returns the style's default text colour.
func (h *Highlighter) Foreground() token.Color {
	return convertColour(h.style.Get(chroma.Background).Colour)
}

// Highlight lexes source. language may be a lexer name or alias, a file
// name, or empty to guess from the content.
func (h *Highlighter) Highlight(ctx context.Context, source, language string) (tokenize.Span, error) {
	_, span := h.tracer.Start(ctx, tracing.SpanHighlight, trace.WithAttributes(
		attribute.String(tracing.AttrLanguage, language),
		attribute.Int(tracing.AttrSourceBytes, len(source)),
	))
	defer span.End()

	root, hit, err := h.cache.GetWithRefresh(ctx, h.key(source, language), request{source: source, language: language}, h.ttl)
	span.SetAttributes(attribute.Bool(tracing.AttrCacheHit, hit))
	if err != nil {
		span.RecordError(err)
		return tokenize.Span{}, err
	}
	return root, nil
}

func (h *Highlighter) key(source, language string) Key {
	d := xxhash.New()
	_, _ = d.WriteString(language)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(h.theme)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(source)
	return Key(strconv.FormatUint(d.Sum64(), 16))
}

func (h *Highlighter) build(_ context.Context, req request) (tokenize.Span, error) {
	lexer := Lexer(req.language, req.source)
	it, err := lexer.Tokenise(nil, req.source)
	if err != nil {
		return tokenize.Span{}, fmt.Errorf("tokenising %s source: %w", lexer.Config().Name, err)
	}

	root := newTreeBuilder(h.style, len(req.source)).build(it.Tokens())
	log.Debug(log.CatHighlight, "highlighted source",
		"lexer", lexer.Config().Name, "bytes", len(req.source), "spans", len(root.Children))
	return root, nil
}

// Lexer picks a coalesced lexer for language, trying it as a lexer name,
// then as a file name, then analysing source, then plain text.
func Lexer(language, source string) chroma.Lexer {
	var l chroma.Lexer
	if language != "" {
		l = lexers.Get(language)
		if l == nil {
			l = lexers.Match(language)
		}
	}
	if l == nil && source != "" {
		l = lexers.Analyse(source)
	}
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

// LanguageFor returns the lexer name chroma associates with a file name,
// or "" when none matches.
func LanguageFor(filename string) string {
	if l := lexers.Match(filename); l != nil {
		return l.Config().Name
	}
	return ""
}

// Themes returns the names of every registered chroma style, sorted.
func Themes() []string {
	return styles.Names()
}

// HasTheme reports whether name is a registered chroma style.
func HasTheme(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

// HasLanguage reports whether language names a lexer or matches a file
// name pattern.
func HasLanguage(language string) bool {
	return lexers.Get(language) != nil || lexers.Match(language) != nil
}
