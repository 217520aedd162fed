package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow_SumsToTotal(t *testing.T) {
	for _, total := range []int{80, 81, 119, 180} {
		for n := 1; n <= 5; n++ {
			sum := 0
			for _, w := range LayoutRow(total, n) {
				sum += w
			}
			assert.Equal(t, total, sum, "total=%d n=%d", total, n)
		}
	}
	assert.Nil(t, LayoutRow(80, 0))
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	require.Less(t, shortLines, tallLines)

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	require.Len(t, lines, tallLines)

	for i := shortLines; i < len(lines); i++ {
		assert.Contains(t, lines[i], "\x1b[", "padding line %d has no background styling", i)
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	joined := CardRow([]string{
		ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20),
		ContentCard("Short", "A", 30),
	})
	lines := strings.Split(joined, "\n")
	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		assert.Equal(t, want, lipgloss.Width(line), "line %d", i)
	}
}

func TestMetricCardRow_Width(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Total Loans", Value: "887,379"},
		{Label: "Total Amount", Value: "$13,095,133,425"},
		{Label: "Avg Interest Rate", Value: "13%"},
		{Label: "Avg Loan Amount", Value: "$14,755"},
	}, 100)
	assert.Equal(t, 100, lipgloss.Width(row))
	assert.Contains(t, row, "887,379")
}

func TestTabBar_WidthsMatchHitboxes(t *testing.T) {
	for active := range Tabs {
		bar := []rune(stripANSI(RenderTabBar(active, 200)))
		pos := 0
		for i, tab := range Tabs {
			name := []rune(tab.Name)
			assert.Equal(t, tab.Name, string(bar[pos+1:pos+1+len(name)]), "active=%d tab=%d", active, i)
			pos += TabVisualWidth(tab, i == active) + 1
		}
	}
	assert.Equal(t, 4, TabIdxByKey('d'))
	assert.Equal(t, -1, TabIdxByKey('z'))
}

func TestBarChart_Height(t *testing.T) {
	out := BarChart([]float64{1, 5, 3}, []string{"Mon", "Tue", "Wed"}, theme.Active.LoanCount, 40, 6)
	lines := strings.Split(out, "\n")
	// 6 bar rows, the axis, and the label row.
	assert.Len(t, lines, 8)
	assert.Contains(t, lines[len(lines)-1], "Mon")
}

func TestBarChart_NarrowFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{1, 2, 3}, nil, theme.Active.LoanCount, 10, 6)
	assert.Equal(t, 1, lipgloss.Height(out))
}

func TestDownsample_PreservesTotal(t *testing.T) {
	values := make([]float64, 100)
	labels := make([]string, 100)
	for i := range values {
		values[i] = 1
		labels[i] = string(rune('a' + i%26))
	}
	got, gotLabels := Downsample(values, labels, 7)
	require.Len(t, got, 7)
	require.Len(t, gotLabels, 7)
	sum := 0.0
	for _, v := range got {
		sum += v
	}
	assert.Equal(t, 100.0, sum)
	assert.Equal(t, "a", gotLabels[0])

	same, _ := Downsample(values[:3], nil, 7)
	assert.Len(t, same, 3)
}

func TestHBars_ScalesToPeak(t *testing.T) {
	out := HBars([]Bar{
		{Label: "A", Value: 10, Display: "10"},
		{Label: "B", Value: 5, Display: "5"},
	}, theme.Active.LoanCount, 40)
	lines := strings.Split(stripANSI(out), "\n")
	require.Len(t, lines, 2)
	assert.InDelta(t, 2*strings.Count(lines[1], "█"), strings.Count(lines[0], "█"), 1)
}

func TestGauge_ThresholdTick(t *testing.T) {
	out := stripANSI(Gauge(model.Prediction{Percent: 84.83, Label: model.LabelGood}, 40))
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, 20, runeIndex(lines[1], '▲'))
	assert.Contains(t, out, "84.83%")
	assert.Contains(t, out, model.LabelGood)
	assert.Equal(t, lipgloss.Color("#FFA07A"), GaugeColor(model.Prediction{Label: model.LabelGood}))
	assert.Equal(t, lipgloss.Color("#FA8072"), GaugeColor(model.Prediction{Label: model.LabelBad}))
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func runeIndex(s string, want rune) int {
	for i, r := range []rune(s) {
		if r == want {
			return i
		}
	}
	return -1
}
