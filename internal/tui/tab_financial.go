package tui

import (
	"fmt"
	"strings"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/tui/components"
	"github.com/loanlens/loanlens/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderFinancialTab(cw int) string {
	t := theme.Active
	db := a.dash
	fv := db.financial
	innerW := components.CardInnerWidth(cw)

	var b strings.Builder
	b.WriteString(a.renderConditionSelector(cw))
	b.WriteString("\n")

	if fv.err != nil {
		b.WriteString(components.ContentCard("Financial Analysis", components.Warning(fv.err.Error()), cw))
		return b.String()
	}

	// Histogram: one chart per term so the split stays readable.
	var hist strings.Builder
	hist.WriteString(components.Legend(fv.terms))
	chartH := 5
	if len(fv.terms) > 2 {
		chartH = 3
	}
	for i, term := range fv.terms {
		vals := make([]float64, len(fv.bins))
		labels := make([]string, len(fv.bins))
		for j, bin := range fv.bins {
			vals[j] = float64(bin.ByTerm[term])
			labels[j] = cli.FormatCompact(bin.Lower)
		}
		hist.WriteString("\n")
		hist.WriteString(components.BarChart(vals, labels, t.Term(i), innerW, chartH))
	}
	title := fmt.Sprintf("Loan Amount Distribution by Term (%s, %s loans)",
		fv.condition, cli.FormatNumber(int64(fv.loans)))
	b.WriteString(components.ContentCard(title, hist.String(), cw))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Loan Amount by Purpose and Term", a.renderBoxTable(innerW), cw))
	return b.String()
}

func (a App) renderConditionSelector(cw int) string {
	t := theme.Active
	db := a.dash

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	active := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.AccentDim).Bold(true).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Padding(0, 1)
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	parts := []string{label.Render(" Loan condition ")}
	for i, v := range db.conditionValues {
		if i == db.selected {
			parts = append(parts, active.Render(v))
		} else {
			parts = append(parts, inactive.Render(v))
		}
	}
	parts = append(parts, hint.Render("  [ ] to change"))
	return lipgloss.NewStyle().Background(t.Surface).Width(cw).Render(strings.Join(parts, ""))
}

// renderBoxTable lists the five-number summary per purpose and term.
func (a App) renderBoxTable(width int) string {
	t := theme.Active
	boxes := a.dash.financial.boxes
	if len(boxes) == 0 {
		return components.Warning("no loans for this condition")
	}

	purposeW := 10
	for _, bx := range boxes {
		purposeW = max(purposeW, len(bx.Purpose))
	}
	purposeW = min(purposeW, max(10, width-66))

	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	format := fmt.Sprintf("%%-%ds %%-10s %%7s %%9s %%9s %%9s %%9s %%9s", purposeW)
	var b strings.Builder
	b.WriteString(head.Render(fmt.Sprintf(format, "Purpose", "Term", "Loans", "Min", "Q1", "Median", "Q3", "Max")))
	for i, bx := range boxes {
		purpose := bx.Purpose
		if i > 0 && boxes[i-1].Purpose == bx.Purpose {
			purpose = ""
		}
		style := cell
		if purpose == "" {
			style = dim
		}
		b.WriteString("\n")
		b.WriteString(style.Render(fmt.Sprintf(format,
			truncStr(purpose, purposeW), bx.Term,
			cli.FormatNumber(int64(bx.Count)),
			cli.FormatMoney(bx.Min), cli.FormatMoney(bx.Q1), cli.FormatMoney(bx.Median),
			cli.FormatMoney(bx.Q3), cli.FormatMoney(bx.Max))))
	}
	return b.String()
}
