package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/magicmove/internal/highlight"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the available highlighting themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, name := range highlight.Themes() {
			marker := "  "
			if name == cfg.Highlight.Theme {
				marker = "* "
			}
			fmt.Fprintln(cmd.OutOrStdout(), marker+name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
}
