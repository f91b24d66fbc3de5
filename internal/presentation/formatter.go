package presentation

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/magicmove/internal/emit"
	"github.com/zjrosen/magicmove/internal/host"
	"github.com/zjrosen/magicmove/internal/report"
)

// Format selects how a transition is printed.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatYAML, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q, want json, yaml or markdown", s)
}

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format Format

	// Markdown is rendered with glamour when style is set.
	style string
	width int
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, format Format) *Formatter {
	return &Formatter{
		writer: writer,
		format: format,
	}
}

// WithMarkdownStyle renders markdown output through glamour with the
// given style ("dark", "light", "notty", ...) wrapped at width.
func (f *Formatter) WithMarkdownStyle(style string, width int) *Formatter {
	f.style = style
	f.width = width
	return f
}

// FormatTransition writes the transition from one payload to the next.
func (f *Formatter) FormatTransition(from, to host.Payload, tr emit.Transition) error {
	switch f.format {
	case FormatYAML:
		encoder := yaml.NewEncoder(f.writer)
		encoder.SetIndent(2)
		if err := encoder.Encode(FromTransition(from, to, tr)); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return encoder.Close()
	case FormatMarkdown:
		md := report.Markdown(from, to, tr)
		if f.style != "" {
			rendered, err := report.Render(md, f.width, f.style)
			if err != nil {
				return err
			}
			md = rendered
		}
		_, err := io.WriteString(f.writer, md)
		return err
	default:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(FromTransition(from, to, tr))
	}
}
