// Package layout places tokens on a monospace cell grid and serves their
// geometry back to the planner.
package layout

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// DefaultTabWidth is used when no tab width is configured.
const DefaultTabWidth = 4

// Cells returns the display width of s in terminal cells when it starts at
// column startCol. Tabs advance to the next multiple of tabWidth.
func Cells(s string, startCol, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	col := startCol
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)
		col += clusterWidth(cluster, col, tabWidth)
	}
	return col - startCol
}

func clusterWidth(cluster string, col, tabWidth int) int {
	if cluster == "\t" {
		return tabWidth - col%tabWidth
	}
	return runewidth.StringWidth(cluster)
}
