package tui

import (
	"fmt"
	"strings"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/tui/components"
	"github.com/loanlens/loanlens/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	db := a.dash
	var b strings.Builder

	if db.summaryErr != nil {
		b.WriteString(components.ContentCard("Overview", components.Warning(db.summaryErr.Error()), cw))
		return b.String()
	}

	s := db.summary
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total Loans", Value: cli.FormatNumber(int64(s.TotalLoans))},
		{Label: "Total Loan Amount", Value: cli.FormatMoney(s.TotalAmount)},
		{Label: "Avg Interest Rate", Value: cli.FormatRate(s.AverageInterestRate)},
		{Label: "Avg Loan Amount", Value: cli.FormatMoney(s.AverageAmount)},
	}, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}

	// Issuance trend: one block per issue date.
	var trend string
	if len(db.byDate) > 0 {
		vals := make([]float64, len(db.byDate))
		for i, p := range db.byDate {
			vals[i] = p.Value
		}
		innerW := components.CardInnerWidth(halves[0])
		vals, _ = components.Downsample(vals, nil, innerW)
		first, last := db.byDate[0].Date, db.byDate[len(db.byDate)-1].Date
		dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		trend = components.Sparkline(vals, t.LoanCount) + "\n" +
			dim.Render(fmt.Sprintf("%s … %s", cli.FormatDate(first), cli.FormatDate(last)))
	} else if db.timelineErr != nil {
		trend = components.Warning(db.timelineErr.Error())
	}
	trendCard := components.ContentCard("Loans Issued", trend, halves[0])

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	var info strings.Builder
	row := func(k, v string) {
		fmt.Fprintf(&info, "%s %s\n", label.Render(fmt.Sprintf("%-14s", k)), value.Render(v))
	}
	row("Source", truncStr(a.dataPath, components.CardInnerWidth(halves[1])-15))
	row("Partitions", fmt.Sprintf("%d of %d", a.load.ParsedFiles, a.load.TotalFiles))
	row("Rows skipped", cli.FormatNumber(int64(a.load.ParseErrors)))
	row("Load time", fmt.Sprintf("%.1fs", a.loadTime.Seconds()))
	if a.predictor != nil {
		row("Model features", fmt.Sprintf("%d", len(a.predictor.Schema())))
	}
	infoCard := components.ContentCard("Dataset", strings.TrimRight(info.String(), "\n"), halves[1])

	if a.isCompactLayout() {
		b.WriteString(trendCard + "\n" + infoCard)
	} else {
		b.WriteString(components.CardRow([]string{trendCard, infoCard}))
	}
	return b.String()
}
