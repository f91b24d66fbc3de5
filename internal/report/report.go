// Package report summarizes a transition as markdown.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/multierr"

	"github.com/zjrosen/magicmove/internal/emit"
	"github.com/zjrosen/magicmove/internal/host"
	"github.com/zjrosen/magicmove/internal/plan"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Markdown describes the transition from one source to the next: counts
// per kind, the instruction table, warnings and a word diff.
func Markdown(from, to host.Payload, tr emit.Transition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s → %s\n\n", title(from.Path, "before"), title(to.Path, "after"))
	if !tr.HasChanges {
		b.WriteString("No changes.\n\n")
	}
	fmt.Fprintf(&b, "Duration **%s**, easing `%s`.\n\n", tr.TotalDuration, tr.Easing)

	b.WriteString("| Kind | Count |\n|---|---:|\n")
	fmt.Fprintf(&b, "| %s | %d |\n", plan.KindUnchanged, tr.Counts.Unchanged)
	fmt.Fprintf(&b, "| %s | %d |\n", plan.KindMoved, tr.Counts.Moved)
	fmt.Fprintf(&b, "| %s | %d |\n", plan.KindAdded, tr.Counts.Added)
	fmt.Fprintf(&b, "| %s | %d |\n\n", plan.KindRemoved, tr.Counts.Removed)

	if len(tr.Instructions) > 0 {
		b.WriteString("## Instructions\n\n")
		b.WriteString("| # | Kind | Text | From | To | Delay |\n|---:|---|---|---|---|---:|\n")
		for i, in := range tr.Instructions {
			text := cell(in.Text)
			if in.Approximate {
				text += " ≈"
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
				i, in.Kind, text, position(in.Start), position(in.End), in.Delay)
		}
		b.WriteString("\n")
	}

	if warnings := multierr.Errors(tr.Warnings); len(warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if from.Source != to.Source {
		b.WriteString("## Diff\n\n```\n")
		b.WriteString(Wdiff(WordDiff(from.Source, to.Source)))
		if !strings.HasSuffix(to.Source, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n")
	}
	return b.String()
}

func title(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return "`" + path + "`"
}

// cell formats token text for a table cell.
func cell(s string) string {
	s = strings.NewReplacer("|", `\|`, "\t", "→", "`", "'").Replace(s)
	return "`" + s + "`"
}

func position(s plan.State) string {
	return fmt.Sprintf("%g,%g", s.X, s.Y)
}

// Render styles markdown for the terminal with glamour. style is a glamour
// standard style name such as "dark", "light" or "notty".
func Render(markdown string, width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
