package tui

import (
	"strings"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/tui/components"
	"github.com/loanlens/loanlens/internal/tui/theme"
)

func (a App) renderTimelineTab(cw int) string {
	t := theme.Active
	db := a.dash
	innerW := components.CardInnerWidth(cw)
	chartH := 8
	if a.isCompactLayout() {
		chartH = 6
	}

	var b strings.Builder
	if db.timelineErr != nil {
		b.WriteString(components.ContentCard("Timeline", components.Warning(db.timelineErr.Error()), cw))
		b.WriteString("\n")
	} else {
		vals, labels := dateSeries(db.byDate)
		b.WriteString(components.ContentCard("Number of Loans Issued Over Time",
			components.BarChart(vals, labels, t.LoanCount, innerW, chartH), cw))
		b.WriteString("\n")

		vals, labels = dateSeries(db.amountDate)
		b.WriteString(components.ContentCard("Total Loan Amount Issued Over Time",
			components.BarChart(vals, labels, t.LoanAmount, innerW, chartH), cw))
		b.WriteString("\n")
	}

	if db.weekdayErr != nil {
		b.WriteString(components.ContentCard("Loans by Day of the Week", components.Warning(db.weekdayErr.Error()), cw))
		return b.String()
	}
	vals := make([]float64, len(db.byWeekday))
	labels := make([]string, len(db.byWeekday))
	for i, c := range db.byWeekday {
		vals[i] = float64(c.Count)
		labels[i] = cli.ShortWeekday(c.Key)
	}
	b.WriteString(components.ContentCard("Distribution of Loans by Day of the Week",
		components.BarChart(vals, labels, t.Accent, innerW, chartH), cw))
	return b.String()
}

// dateSeries flattens points into values and month-boundary labels.
func dateSeries(pts []model.DatePoint) ([]float64, []string) {
	vals := make([]float64, len(pts))
	labels := make([]string, len(pts))
	for i, p := range pts {
		vals[i] = p.Value
		switch {
		case i == 0, p.Date.Year() != pts[i-1].Date.Year():
			labels[i] = p.Date.Format("Jan 06")
		case p.Date.Month() != pts[i-1].Date.Month():
			labels[i] = p.Date.Format("Jan")
		default:
			labels[i] = ""
		}
	}
	return vals, labels
}
