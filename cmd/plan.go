package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/zjrosen/magicmove/internal/layout"
	"github.com/zjrosen/magicmove/internal/log"
	"github.com/zjrosen/magicmove/internal/presentation"
)

var (
	planFormat string
	planCopy   bool
	planWidth  int
)

var planCmd = &cobra.Command{
	Use:   "plan <from> <to>",
	Short: "Print the animation plan between two files",
	Long: `Compute the transition from one file to another and print it.

Positions are terminal cells: x is the display column and y the line.

Examples:
  # Full instruction list as JSON
  magicmove plan before.go after.go

  # Human readable summary with a word diff
  magicmove plan before.go after.go --format markdown

  # Copy the YAML plan to the clipboard
  magicmove plan before.go after.go -f yaml --copy`,
	Args: cobra.ExactArgs(2),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planFormat, "format", "f", string(presentation.FormatJSON), "output format: json, yaml or markdown")
	planCmd.Flags().BoolVar(&planCopy, "copy", false, "also copy the output to the clipboard")
	planCmd.Flags().IntVar(&planWidth, "width", 100, "word wrap width for rendered markdown")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	format, err := presentation.ParseFormat(planFormat)
	if err != nil {
		return err
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	steps, err := rt.load(args)
	if err != nil {
		return err
	}
	if len(steps) != 2 {
		return fmt.Errorf("plan needs exactly two files, %d matched", len(steps))
	}
	from, to := steps[0], steps[1]

	ctx := cmd.Context()
	stage := rt.stage(layout.TerminalGrid(0))
	if _, err := stage.Advance(ctx, from); err != nil {
		return err
	}
	tr, err := stage.Advance(ctx, to)
	if err != nil {
		return err
	}

	var raw bytes.Buffer
	if err := presentation.NewFormatter(&raw, format).FormatTransition(from, to, tr); err != nil {
		return err
	}

	if planCopy {
		if err := clipboard.WriteAll(raw.String()); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		log.Info(log.CatConfig, "plan copied to clipboard", "bytes", raw.Len())
	}

	out := cmd.OutOrStdout()
	if format == presentation.FormatMarkdown {
		if style := markdownStyle(out); style != "" {
			return presentation.NewFormatter(out, format).
				WithMarkdownStyle(style, planWidth).
				FormatTransition(from, to, tr)
		}
	}
	_, err = io.Copy(out, &raw)
	return err
}

// markdownStyle picks a glamour style for w, or "" when w is not a
// colour terminal and markdown should be printed as is.
func markdownStyle(w io.Writer) string {
	if termenv.NewOutput(w).Profile == termenv.Ascii {
		return ""
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
