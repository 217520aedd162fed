package components

import (
	"fmt"
	"strings"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/predict"
	"github.com/loanlens/loanlens/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a loading bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = max(0, min(pct, 1))
	filled := min(width, int(pct*float64(width)))

	barColor := t.Loading
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// GaugeColor returns the fill color for a prediction.
func GaugeColor(p model.Prediction) lipgloss.Color {
	return theme.Active.Gauge(p.Good())
}

// Gauge renders a 0-100 prediction gauge: the bar, a tick row marking the
// decision threshold, and the percent with its label.
func Gauge(p model.Prediction, width int) string {
	t := theme.Active
	width = max(20, width)
	color := GaugeColor(p)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	mark := int(predict.Threshold / 100 * float64(width))
	tickStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	ticks := fmt.Sprintf("%-*s%s%*s", mark, "0", "▲", width-mark-1, "100")

	valueStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(p.Percent/100) + "\n" +
		tickStyle.Render(ticks) + "\n\n" +
		valueStyle.Render(cli.FormatPercent(p.Percent)) +
		spaceStyle.Render("  ") +
		labelStyle.Render(p.Label)
}
