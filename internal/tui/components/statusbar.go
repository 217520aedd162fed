package components

import (
	"strings"

	"github.com/loanlens/loanlens/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// dataset info on the right.
func RenderStatusBar(width int, hints, info string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	left := " " + hints
	right := info + " "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return style.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}
