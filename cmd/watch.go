package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/magicmove/internal/host"
	"github.com/zjrosen/magicmove/internal/host/terminal"
	"github.com/zjrosen/magicmove/internal/layout"
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Animate every saved change to a file",
	Long: `Show a file in the terminal and animate to its new contents each time it
is saved. Writes are debounced (watch.debounce) so editors that save in
several steps animate once.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	f, err := rt.loader.Load(path)
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.Config{Path: path, Debounce: cfg.Watch.Debounce})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	player := terminal.NewPlayer(rt.stage(layout.TerminalGrid(0)), rt.terminalOptions())
	if err := player.Mount(ctx, host.PayloadFrom(f)); err != nil {
		return fmt.Errorf("mounting player: %w", err)
	}
	log.Info(log.CatWatcher, "watching", "path", path, "debounce", cfg.Watch.Debounce)

	followCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	followErr := make(chan error, 1)
	go func() {
		followErr <- watcher.Follow(followCtx, changes, rt.loader, path, f.Source, player)
	}()

	select {
	case <-player.Done():
	case err := <-followErr:
		if err != nil {
			_ = player.Dispose()
			return err
		}
		<-player.Done()
	}
	cancel()
	return player.Dispose()
}
