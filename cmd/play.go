package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/magicmove/internal/host/terminal"
	"github.com/zjrosen/magicmove/internal/layout"
)

var playCmd = &cobra.Command{
	Use:   "play <file|glob>...",
	Short: "Play a series of code states in the terminal",
	Long: `Play each file as one step of a slideshow, animating the changes between
consecutive steps. Globs expand to their sorted matches.

Examples:
  magicmove play step1.go step2.go step3.go
  magicmove play 'slides/*.rs'
  magicmove play --theme dracula 'demo/**/*.py'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	steps, err := rt.load(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stage := rt.stage(layout.TerminalGrid(0))
	if err := terminal.Run(ctx, stage, steps, rt.terminalOptions()); err != nil {
		return fmt.Errorf("running player: %w", err)
	}
	return nil
}

// terminalOptions builds player options from the config and theme.
func (r *runtime) terminalOptions() terminal.Options {
	return terminal.Options{
		FPS:          cfg.Terminal.FPS,
		Foreground:   r.highlighter.Foreground(),
		Background:   r.highlighter.Background(),
		ColorProfile: cfg.Terminal.ColorProfile,
	}
}
