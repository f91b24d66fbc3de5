// Package host defines the contract every renderer implements and the
// Stage that drives the engine for one rendered container.
package host

import (
	"context"
	"errors"

	"github.com/zjrosen/magicmove/internal/source"
	"github.com/zjrosen/magicmove/internal/tokenize"
)

var (
	// ErrNotMounted is returned by Update before Mount.
	ErrNotMounted = errors.New("renderer not mounted")
	// ErrDisposed is returned by any call after Dispose.
	ErrDisposed = errors.New("renderer disposed")
)

// Payload is one code state handed to a renderer.
type Payload struct {
	Path     string
	Source   string
	Language string
	TabWidth int
}

// PayloadFrom converts a loaded source file.
func PayloadFrom(f source.File) Payload {
	return Payload{Path: f.Path, Source: f.Source, Language: f.Language, TabWidth: f.TabWidth}
}

// Renderer binds the engine to one output target. Mount shows the first
// state, each Update animates from the current state to the new one.
type Renderer interface {
	Mount(ctx context.Context, p Payload) error
	Update(ctx context.Context, p Payload) error
	Dispose() error
}

// Highlighter produces span trees, see package highlight.
type Highlighter interface {
	Highlight(ctx context.Context, source, language string) (tokenize.Span, error)
}
