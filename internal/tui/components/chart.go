package components

import (
	"fmt"
	"strings"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface)
	return style.Render(cli.RenderSparkline(values))
}

// Downsample folds values into at most n buckets by summing neighbours.
// Each bucket keeps the label of its first element.
func Downsample(values []float64, labels []string, n int) ([]float64, []string) {
	if n <= 0 || len(values) <= n {
		return values, labels
	}
	outV := make([]float64, n)
	var outL []string
	if len(labels) == len(values) {
		outL = make([]string, n)
	}
	for i := range n {
		lo := i * len(values) / n
		hi := (i + 1) * len(values) / n
		for _, v := range values[lo:hi] {
			outV[i] += v
		}
		if outL != nil {
			outL[i] = labels[lo]
		}
	}
	return outV, outL
}

// BarChart renders a vertical bar chart with a y axis and sparse x labels.
// Series longer than the available width are downsampled.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	const yLabelW = 7 // widest compact label is "999.9M" plus a space
	chartW := max(5, width-yLabelW-1)
	values, labels = Downsample(values, labels, chartW)

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	n := len(values)
	slot := chartW / n
	barW := max(1, min(6, slot-1))
	gap := 0
	if slot >= 2 {
		gap = 1
	}
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	blankStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		top := peak * float64(row) / float64(height)
		bottom := peak * float64(row-1) / float64(height)

		label := ""
		switch row {
		case height:
			label = axisValue(peak)
		case (height + 1) / 2:
			label = axisValue(bottom)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		b.WriteString(axisStyle.Render("│"))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blankStyle.Render(strings.Repeat(" ", gap)))
			}
			cell := ' '
			switch {
			case v >= top:
				cell = '█'
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * 8)
				cell = eighths[max(1, min(idx, 8))]
			}
			b.WriteString(barStyle.Render(strings.Repeat(string(cell), barW)))
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blankStyle.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(axisLabels(labels, barW+gap, axisLen)))
	}
	return b.String()
}

func axisValue(v float64) string {
	if v < 1000 {
		return fmt.Sprintf("%.0f", v)
	}
	return cli.FormatCompact(v)
}

// axisLabels places labels at their bar offsets, dropping any that would
// overlap the previous one.
func axisLabels(labels []string, stride, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	next := 0
	for i, lbl := range labels {
		pos := i * stride
		r := []rune(lbl)
		if pos < next || pos+len(r) > axisLen {
			continue
		}
		copy(buf[pos:], r)
		next = pos + len(r) + 1
	}
	return strings.TrimRight(string(buf), " ")
}

// Bar is one row of an HBars chart.
type Bar struct {
	Label   string
	Value   float64
	Display string
	Color   lipgloss.Color // overrides the chart color when set
}

// HBars renders labelled horizontal bars scaled to the largest value.
func HBars(bars []Bar, color lipgloss.Color, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, displayW := 0, 0
	peak := 0.0
	for _, bar := range bars {
		labelW = max(labelW, lipgloss.Width(bar.Label))
		displayW = max(displayW, lipgloss.Width(bar.Display))
		peak = max(peak, bar.Value)
	}
	labelW = min(labelW, max(8, width/3))
	barMax := max(1, width-labelW-displayW-2)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	numStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	blankStyle := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, len(bars))
	for i, bar := range bars {
		n := 0
		if peak > 0 {
			n = int(bar.Value / peak * float64(barMax))
		}
		barColor := color
		if bar.Color != "" {
			barColor = bar.Color
		}
		barStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
		lines[i] = nameStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(bar.Label, labelW))) +
			blankStyle.Render(" ") +
			barStyle.Render(strings.Repeat("█", n)) +
			blankStyle.Render(strings.Repeat(" ", barMax-n+1)) +
			numStyle.Render(fmt.Sprintf("%*s", displayW, bar.Display))
	}
	return strings.Join(lines, "\n")
}

// Legend renders colored swatches for series names.
func Legend(names []string) string {
	t := theme.Active
	text := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	parts := make([]string, len(names))
	for i, name := range names {
		sw := lipgloss.NewStyle().Foreground(t.Term(i)).Background(t.Surface)
		parts[i] = sw.Render("■") + text.Render(" "+name)
	}
	return strings.Join(parts, text.Render("   "))
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return string(r[:limit-1]) + "…"
}
