package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/magicmove/internal/host/gif"
	"github.com/zjrosen/magicmove/internal/layout"
	"github.com/zjrosen/magicmove/internal/log"
)

var (
	exportOutput string
	exportFPS    int
	exportNoLoop bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file|glob>... -o out.gif",
	Short: "Render the transitions to an animated GIF",
	Long: `Render every transition between consecutive files to one animated GIF.
Each step holds for export.hold before the next animation starts.

Examples:
  magicmove export step1.go step2.go -o demo.gif
  magicmove export 'slides/*.ts' -o slides.gif --fps 20 --no-loop`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "magicmove.gif", "GIF file to write")
	exportCmd.Flags().IntVar(&exportFPS, "fps", 0, "frames per second (default: export.fps)")
	exportCmd.Flags().BoolVar(&exportNoLoop, "no-loop", false, "play the animation once")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	steps, err := rt.load(args)
	if err != nil {
		return err
	}

	opts := gif.Options{
		FPS:         cfg.Export.FPS,
		FontSize:    cfg.Export.FontSize,
		LineSpacing: cfg.Export.LineSpacing,
		Padding:     cfg.Export.Padding,
		Hold:        cfg.Export.Hold,
		NoLoop:      !cfg.Export.Loop || exportNoLoop,
		Background:  rt.highlighter.Background(),
		Foreground:  rt.highlighter.Foreground(),
		Tracer:      rt.tracer.Tracer(),
	}
	if exportFPS > 0 {
		opts.FPS = exportFPS
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("creating %s: %w", exportOutput, err)
	}

	frames, err := gif.Export(cmd.Context(), rt.stage(layout.Grid{}), steps, f, opts)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(exportOutput)
		return fmt.Errorf("exporting %s: %w", exportOutput, err)
	}

	log.Info(log.CatRender, "gif exported", "path", exportOutput, "frames", frames, "steps", len(steps))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d steps, %d frames)\n", exportOutput, len(steps), frames)
	return nil
}
