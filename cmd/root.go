package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/magicmove/internal/config"
	"github.com/zjrosen/magicmove/internal/engine"
	"github.com/zjrosen/magicmove/internal/highlight"
	"github.com/zjrosen/magicmove/internal/host"
	"github.com/zjrosen/magicmove/internal/layout"
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/source"
	"github.com/zjrosen/magicmove/internal/tracing"
	"github.com/zjrosen/magicmove/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config
	cfgErr  error

	// fs is the filesystem sources are read from.
	fs afero.Fs = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "magicmove",
	Short: "Animate code between states, token by token",
	Long: `magicmove animates the changes between successive versions of source code.

Tokens that survive a change glide to their new position, new tokens fade in
and removed tokens fade out. Play a series of files in the terminal, follow a
file while you edit it, print the animation plan, or export it as a GIF.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .magicmove/config.yaml or ~/.config/magicmove/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false,
		"write debug logs to magicmove.log")
	rootCmd.PersistentFlags().String("theme", "",
		"chroma style used for highlighting (see 'magicmove themes')")
	rootCmd.PersistentFlags().String("language", "",
		"force a lexer instead of detecting it from the file name")

	// Bind flags to viper
	_ = viper.BindPFlag("highlight.theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("highlight.language", rootCmd.PersistentFlags().Lookup("language"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .magicmove/config.yaml (current directory)
		// 2. ~/.config/magicmove/config.yaml (user config)
		if _, err := os.Stat(config.LocalConfigPath); err == nil {
			viper.SetConfigFile(config.LocalConfigPath)
		} else {
			viper.AddConfigPath(config.UserConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create the user default
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if dir := config.UserConfigDir(); dir != "" {
				defaultPath := filepath.Join(dir, "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
			}
			// If write fails, just continue with defaults (no config file)
		} else if !os.IsNotExist(err) {
			cfgErr = fmt.Errorf("reading config: %w", err)
			return
		}
	}

	cfg, cfgErr = config.Unmarshal(viper.GetViper())
}

// setup runs before every command that needs a valid configuration.
func setup(cmd *cobra.Command, _ []string) error {
	if cfgErr != nil {
		return cfgErr
	}
	if debug {
		cleanup, err := log.Init("magicmove.log")
		if err != nil {
			return err
		}
		logCleanup = cleanup
	} else {
		cleanup, err := log.InitFromEnv()
		if err != nil {
			return err
		}
		logCleanup = cleanup
	}
	log.Info(log.CatConfig, "magicmove starting", "version", version, "config", viper.ConfigFileUsed(), "command", cmd.Name())

	styles.ApplyTheme(cfg.UI.Muted, cfg.UI.Warning, cfg.UI.Error)
	return nil
}

var logCleanup = func() {}

// runtime is the pipeline shared by the commands that animate sources.
type runtime struct {
	tracer      *tracing.Provider
	highlighter *highlight.Highlighter
	engine      *engine.Engine
	loader      *source.Loader
}

func newRuntime() (*runtime, error) {
	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("starting tracing: %w", err)
	}
	tracer := tp.Tracer()

	loader := source.NewLoader(fs)
	loader.Language = cfg.Highlight.Language
	loader.DefaultTabWidth = cfg.Layout.TabWidth

	return &runtime{
		tracer: tp,
		highlighter: highlight.New(cfg.Highlight.Theme,
			highlight.WithCacheTTL(cfg.Highlight.CacheTTL),
			highlight.WithTracer(tracer),
		),
		engine: engine.New(cfg.Animation.Plan(), engine.WithTracer(tracer)),
		loader: loader,
	}, nil
}

// stage returns a fresh Stage placing tokens on grid.
func (r *runtime) stage(grid layout.Grid) *host.Stage {
	return host.NewStage(r.engine, r.highlighter, grid, host.WithSplitWords(cfg.Highlight.SplitWords))
}

// load expands args and loads every source as a payload.
func (r *runtime) load(args []string) ([]host.Payload, error) {
	files, err := r.loader.LoadAll(args)
	if err != nil {
		return nil, err
	}
	steps := make([]host.Payload, len(files))
	for i, f := range files {
		steps[i] = host.PayloadFrom(f)
	}
	return steps, nil
}

func (r *runtime) Close() {
	stats := r.highlighter.CacheStats()
	log.Debug(log.CatCache, "highlight cache", "hits", stats.Hits, "misses", stats.Misses, "entries", stats.Entries)
	if err := r.tracer.Shutdown(context.Background()); err != nil {
		log.ErrorErr(log.CatTrace, "tracing shutdown failed", err)
	}
}

// Execute runs the root command
func Execute() error {
	defer func() { logCleanup() }()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
