package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an sRGB colour with alpha. The zero value means "unset" and is
// treated as fully transparent black wherever colours are blended.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// IsSet reports whether the colour carries a value.
func (c Color) IsSet() bool {
	return c != Color{}
}

// String formats the colour as #rrggbb, or #rrggbbaa when not opaque.
// Unset colours format as the empty string.
func (c Color) String() string {
	if !c.IsSet() {
		return ""
	}
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = Color{}
		return nil
	}
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts #rgb, #rrggbb and #rrggbbaa (the leading # is optional).
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return Color{}, fmt.Errorf("invalid colour %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Style is a fully resolved, transport-agnostic text style.
type Style struct {
	Foreground Color `json:"foreground" yaml:"foreground,omitempty"`
	Background Color `json:"background" yaml:"background,omitempty"`
	Bold       bool  `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic     bool  `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline  bool  `json:"underline,omitempty" yaml:"underline,omitempty"`
}

// Trilean is a style attribute that may be left to inherit.
type Trilean uint8

const (
	Inherit Trilean = iota
	Yes
	No
)

func (t Trilean) resolve(parent bool) bool {
	switch t {
	case Yes:
		return true
	case No:
		return false
	default:
		return parent
	}
}

// StyleSpec is the partial style a highlighter attaches to a span.
// Unset colours and Inherit attributes take the enclosing span's value.
type StyleSpec struct {
	Foreground Color
	Background Color
	Bold       Trilean
	Italic     Trilean
	Underline  Trilean
}

// Resolve applies s on top of the parent's resolved style.
func (s StyleSpec) Resolve(parent Style) Style {
	out := parent
	if s.Foreground.IsSet() {
		out.Foreground = s.Foreground
	}
	if s.Background.IsSet() {
		out.Background = s.Background
	}
	out.Bold = s.Bold.resolve(parent.Bold)
	out.Italic = s.Italic.resolve(parent.Italic)
	out.Underline = s.Underline.resolve(parent.Underline)
	return out
}

// IsZero reports whether s overrides nothing.
func (s StyleSpec) IsZero() bool {
	return s == StyleSpec{}
}
