package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults registers every default with v so keys missing from the
// config file keep their default values.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("animation.duration", d.Animation.Duration)
	v.SetDefault("animation.stagger", d.Animation.Stagger)
	v.SetDefault("animation.easing", d.Animation.Easing)
	v.SetDefault("animation.entry_offset.x", d.Animation.EntryOffset.X)
	v.SetDefault("animation.entry_offset.y", d.Animation.EntryOffset.Y)
	v.SetDefault("animation.exit_offset.x", d.Animation.ExitOffset.X)
	v.SetDefault("animation.exit_offset.y", d.Animation.ExitOffset.Y)
	v.SetDefault("animation.collapse_unchanged", d.Animation.CollapseUnchanged)

	v.SetDefault("highlight.theme", d.Highlight.Theme)
	v.SetDefault("highlight.language", d.Highlight.Language)
	v.SetDefault("highlight.cache_ttl", d.Highlight.CacheTTL)
	v.SetDefault("highlight.split_words", d.Highlight.SplitWords)

	v.SetDefault("layout.tab_width", d.Layout.TabWidth)

	v.SetDefault("terminal.fps", d.Terminal.FPS)
	v.SetDefault("terminal.color_profile", d.Terminal.ColorProfile)

	v.SetDefault("export.fps", d.Export.FPS)
	v.SetDefault("export.font_size", d.Export.FontSize)
	v.SetDefault("export.line_spacing", d.Export.LineSpacing)
	v.SetDefault("export.padding", d.Export.Padding)
	v.SetDefault("export.hold", d.Export.Hold)
	v.SetDefault("export.loop", d.Export.Loop)

	v.SetDefault("watch.debounce", d.Watch.Debounce)

	v.SetDefault("ui.muted", d.UI.Muted)
	v.SetDefault("ui.warning", d.UI.Warning)
	v.SetDefault("ui.error", d.UI.Error)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// Unmarshal decodes v into a Config and validates it.
func Unmarshal(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(c); err != nil {
		return c, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}
