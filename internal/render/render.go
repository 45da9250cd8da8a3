// Package render draws presenter views for the terminal: a summary line,
// then the unified diff with per-line coloring.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/benchwatch/revdiff/internal/core/present"
)

var (
	styleAdd    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleDelete = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleHunk   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// View renders a presenter view. Degraded views render the diagnostic
// only; the diff body and toggle hint are withheld.
func View(v present.View, color bool) string {
	var b strings.Builder

	if v.Degraded {
		b.WriteString(maybe(styleWarn, v.Diagnostic, color))
		b.WriteString("\n")
		return b.String()
	}

	summary := fmt.Sprintf("%d change(s), %d comment(s)", v.Count, v.Comments)
	b.WriteString(maybe(styleMuted, summary, color))
	b.WriteString("\n\n")
	b.WriteString(Diff(v.Text, color))
	if !strings.HasSuffix(v.Text, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// Diff colors each line of a unified diff by its leading marker. With
// color disabled the text passes through unchanged.
func Diff(text string, color bool) string {
	if !color {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = styleFor(line).Render(line)
	}
	return strings.Join(lines, "\n")
}

// styleFor picks a style from the line's unified-diff marker. File
// headers are checked before the +/- markers that prefix them.
func styleFor(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		return styleHeader
	case strings.HasPrefix(line, "@@"):
		return styleHunk
	case strings.HasPrefix(line, "+"):
		return styleAdd
	case strings.HasPrefix(line, "-"):
		return styleDelete
	default:
		return lipgloss.NewStyle()
	}
}

func maybe(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}
