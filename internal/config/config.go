// Package config provides configuration types, defaults and validation for
// magicmove.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"

	"github.com/zjrosen/magicmove/internal/highlight"
	"github.com/zjrosen/magicmove/internal/interp"
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/plan"
	"github.com/zjrosen/magicmove/internal/tracing"
)

// Config holds all configuration options for magicmove.
type Config struct {
	Animation AnimationConfig `mapstructure:"animation"`
	Highlight HighlightConfig `mapstructure:"highlight"`
	Layout    LayoutConfig    `mapstructure:"layout"`
	Terminal  TerminalConfig  `mapstructure:"terminal"`
	Export    ExportConfig    `mapstructure:"export"`
	Watch     WatchConfig     `mapstructure:"watch"`
	UI        UIConfig        `mapstructure:"ui"`
	Tracing   tracing.Config  `mapstructure:"tracing"`
}

// AnimationConfig holds the planner timing and placement options.
type AnimationConfig struct {
	Duration time.Duration `mapstructure:"duration"`
	Stagger  time.Duration `mapstructure:"stagger"`
	Easing   string        `mapstructure:"easing"` // see interp.Names
	// Offsets applied to the start of added and the end of removed tokens.
	EntryOffset       plan.Offset `mapstructure:"entry_offset"`
	ExitOffset        plan.Offset `mapstructure:"exit_offset"`
	CollapseUnchanged bool        `mapstructure:"collapse_unchanged"`
}

// Plan converts the section to planner options.
func (a AnimationConfig) Plan() plan.Config {
	return plan.Config{
		Duration:          a.Duration,
		Stagger:           a.Stagger,
		Easing:            a.Easing,
		EntryOffset:       a.EntryOffset,
		ExitOffset:        a.ExitOffset,
		CollapseUnchanged: a.CollapseUnchanged,
	}
}

// HighlightConfig holds syntax highlighting options.
type HighlightConfig struct {
	Theme string `mapstructure:"theme"` // chroma style name
	// Language overrides detection from the file name.
	Language   string        `mapstructure:"language"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	SplitWords bool          `mapstructure:"split_words"`
}

// LayoutConfig holds text layout options.
type LayoutConfig struct {
	// TabWidth is used when no .editorconfig sets one.
	TabWidth int `mapstructure:"tab_width"`
}

// TerminalConfig holds terminal player options.
type TerminalConfig struct {
	FPS          int    `mapstructure:"fps"`
	ColorProfile string `mapstructure:"color_profile"` // auto, truecolor, 256, 16 or none
}

// ExportConfig holds GIF export options.
type ExportConfig struct {
	FPS         int           `mapstructure:"fps"`
	FontSize    float64       `mapstructure:"font_size"`
	LineSpacing float64       `mapstructure:"line_spacing"`
	Padding     float64       `mapstructure:"padding"`
	Hold        time.Duration `mapstructure:"hold"`
	Loop        bool          `mapstructure:"loop"`
}

// WatchConfig holds file watching options.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// UIConfig holds player chrome colours. Empty values keep the defaults.
type UIConfig struct {
	Muted   string `mapstructure:"muted"`
	Warning string `mapstructure:"warning"`
	Error   string `mapstructure:"error"`
}

// Config file locations, relative to the working directory and the user
// config directory.
const (
	LocalConfigPath = ".magicmove/config.yaml"
	configDirName   = "magicmove"
)

// UserConfigDir returns ~/.config/magicmove, or "" if the home directory is
// unavailable.
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", configDirName)
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/magicmove/traces/traces.jsonl or "traces.jsonl" if the
// home dir is unavailable.
func DefaultTracesFilePath() string {
	dir := UserConfigDir()
	if dir == "" {
		return "traces.jsonl"
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	p := plan.DefaultConfig()
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()
	return Config{
		Animation: AnimationConfig{
			Duration: p.Duration,
			Stagger:  p.Stagger,
			Easing:   p.Easing,
		},
		Highlight: HighlightConfig{
			Theme:    highlight.DefaultTheme,
			CacheTTL: 10 * time.Minute,
		},
		Layout: LayoutConfig{
			TabWidth: 4,
		},
		Terminal: TerminalConfig{
			FPS:          30,
			ColorProfile: "auto",
		},
		Export: ExportConfig{
			FPS:         30,
			FontSize:    16,
			LineSpacing: 1.4,
			Padding:     24,
			Hold:        time.Second,
			Loop:        true,
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Tracing: tr,
	}
}

// Validate checks every section and returns all problems found.
func Validate(c Config) error {
	return multierr.Combine(
		ValidateAnimation(c.Animation),
		ValidateHighlight(c.Highlight),
		ValidateLayout(c.Layout),
		ValidateTerminal(c.Terminal),
		ValidateExport(c.Export),
		ValidateWatch(c.Watch),
		ValidateTracing(c.Tracing),
	)
}

// ValidateAnimation checks animation configuration for errors.
func ValidateAnimation(a AnimationConfig) error {
	if a.Duration < 0 {
		return fmt.Errorf("animation.duration must not be negative, got %s", a.Duration)
	}
	if a.Stagger < 0 {
		return fmt.Errorf("animation.stagger must not be negative, got %s", a.Stagger)
	}
	if a.Easing != "" {
		if _, ok := interp.Lookup(a.Easing); !ok {
			return fmt.Errorf("animation.easing must be one of %v, got %q", interp.Names(), a.Easing)
		}
	}
	return nil
}

// ValidateHighlight checks highlight configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateHighlight(h HighlightConfig) error {
	if h.Theme != "" && !highlight.HasTheme(h.Theme) {
		return fmt.Errorf("highlight.theme %q is not a known chroma style", h.Theme)
	}
	if h.Language != "" && !highlight.HasLanguage(h.Language) {
		return fmt.Errorf("highlight.language %q is not a known lexer", h.Language)
	}
	if h.CacheTTL < 0 {
		return fmt.Errorf("highlight.cache_ttl must not be negative, got %s", h.CacheTTL)
	}
	return nil
}

// ValidateLayout checks layout configuration for errors.
func ValidateLayout(l LayoutConfig) error {
	if l.TabWidth < 0 || l.TabWidth > 16 {
		return fmt.Errorf("layout.tab_width must be between 0 and 16, got %d", l.TabWidth)
	}
	return nil
}

// ValidateTerminal checks terminal player configuration for errors.
func ValidateTerminal(t TerminalConfig) error {
	if t.FPS < 0 || t.FPS > 120 {
		return fmt.Errorf("terminal.fps must be between 0 and 120, got %d", t.FPS)
	}
	switch t.ColorProfile {
	case "", "auto", "truecolor", "256", "16", "none":
	default:
		return fmt.Errorf("terminal.color_profile must be \"auto\", \"truecolor\", \"256\", \"16\", or \"none\", got %q", t.ColorProfile)
	}
	return nil
}

// ValidateExport checks export configuration for errors.
func ValidateExport(e ExportConfig) error {
	if e.FPS < 0 || e.FPS > 100 {
		return fmt.Errorf("export.fps must be between 0 and 100, got %d", e.FPS)
	}
	if e.FontSize < 0 {
		return fmt.Errorf("export.font_size must not be negative, got %v", e.FontSize)
	}
	if e.LineSpacing < 0 {
		return fmt.Errorf("export.line_spacing must not be negative, got %v", e.LineSpacing)
	}
	if e.Padding < 0 {
		return fmt.Errorf("export.padding must not be negative, got %v", e.Padding)
	}
	if e.Hold < 0 {
		return fmt.Errorf("export.hold must not be negative, got %s", e.Hold)
	}
	return nil
}

// ValidateWatch checks watch configuration for errors.
func ValidateWatch(w WatchConfig) error {
	if w.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", w.Debounce)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	if t.Exporter != "" {
		switch t.Exporter {
		case tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if t.Enabled {
		if t.Exporter == tracing.ExporterFile && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == tracing.ExporterOTLP && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# magicmove configuration

# Animation timing
animation:
  duration: 500ms         # Length of each token's animation
  stagger: 0s             # Extra delay per animated token, in plan order
  easing: ease-in-out     # linear, ease-in, ease-out, ease-in-out, ease-out-back
  # entry_offset:         # Added tokens start displaced by this much
  #   x: 0
  #   y: 1
  # exit_offset:          # Removed tokens end displaced by this much
  #   x: 0
  #   y: -1
  collapse_unchanged: false  # Give unchanged tokens zero duration

# Syntax highlighting (chroma)
highlight:
  theme: monokai          # Any chroma style, see 'magicmove themes'
  # language: go          # Force a lexer instead of detecting from the file name
  cache_ttl: 10m          # How long highlighted sources stay cached
  split_words: false      # Split identifiers from punctuation inside tokens

# Text layout
layout:
  tab_width: 4            # Used when no .editorconfig sets tab_width or indent_size

# Terminal player
terminal:
  fps: 30
  color_profile: auto     # auto, truecolor, 256, 16, or none

# GIF export
export:
  fps: 30
  font_size: 16           # Points, rendered at 72 DPI
  line_spacing: 1.4       # Multiple of the font height
  padding: 24             # Pixels around the code
  hold: 1s                # Pause on the last frame of each step
  loop: true

# Watch mode
watch:
  debounce: 100ms         # Wait for writes to settle before animating

# Player chrome colours (optional)
# ui:
#   muted: "#696969"
#   warning: "#FECA57"
#   error: "#FF8787"

# Distributed tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/magicmove/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
