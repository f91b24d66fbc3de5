package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// TruncateString truncates s to maxWidth cells, adding an ellipsis if
// needed. ANSI sequences are preserved.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// FormatStep renders a 1-based step counter such as "3/7".
func FormatStep(index, total int) string {
	if total <= 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", index+1, total)
}

// FormatWarnings returns the warning indicator, or "" when count is 0.
func FormatWarnings(count int) string {
	switch {
	case count <= 0:
		return ""
	case count == 1:
		return "⚠ 1 warning"
	default:
		return fmt.Sprintf("⚠ %d warnings", count)
	}
}

// FormatCounts renders the per-kind instruction counts, each in its kind
// color.
func FormatCounts(moved, added, removed int) string {
	return strings.Join([]string{
		KindMovedStyle.Render(fmt.Sprintf("%d moved", moved)),
		KindAddedStyle.Render(fmt.Sprintf("%d added", added)),
		KindRemovedStyle.Render(fmt.Sprintf("%d removed", removed)),
	}, " · ")
}
