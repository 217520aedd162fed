package tui

import (
	"fmt"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/tui/components"
	"github.com/loanlens/loanlens/internal/tui/theme"
)

func (a App) renderPerformanceTab(cw int) string {
	t := theme.Active
	db := a.dash

	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}

	var condBody string
	if db.conditionErr != nil {
		condBody = components.Warning(db.conditionErr.Error())
	} else {
		condBody = components.HBars(shareBars(db.conditions, t), t.Condition, components.CardInnerWidth(halves[0]))
	}
	condCard := components.ContentCard("Distribution of Loans by Condition", condBody, halves[0])

	var gradeBody string
	if db.gradeErr != nil {
		gradeBody = components.Warning(db.gradeErr.Error())
	} else {
		vals := make([]float64, len(db.grades))
		labels := make([]string, len(db.grades))
		for i, g := range db.grades {
			vals[i] = float64(g.Count)
			labels[i] = g.Key
		}
		gradeBody = components.BarChart(vals, labels, t.Grade, components.CardInnerWidth(halves[1]), 8)
	}
	gradeCard := components.ContentCard("Distribution of Loans by Grade", gradeBody, halves[1])

	if a.isCompactLayout() {
		return condCard + "\n" + gradeCard
	}
	return components.CardRow([]string{condCard, gradeCard})
}

// shareBars renders counts with their share of the total, as the condition
// donut does in the exported charts. Good and bad loans take their own colors.
func shareBars(counts []model.CategoryCount, t theme.Theme) []components.Bar {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	bars := make([]components.Bar, len(counts))
	for i, c := range counts {
		share := 0.0
		if total > 0 {
			share = float64(c.Count) / float64(total) * 100
		}
		bars[i] = components.Bar{
			Label:   c.Key,
			Value:   float64(c.Count),
			Display: fmt.Sprintf("%s  %5.1f%%", cli.FormatNumber(int64(c.Count)), share),
		}
		switch c.Key {
		case model.LabelGood:
			bars[i].Color = t.ConditionColor(true)
		case model.LabelBad:
			bars[i].Color = t.ConditionColor(false)
		}
	}
	return bars
}
