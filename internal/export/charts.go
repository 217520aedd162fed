// Package export renders dashboard charts as PNG images.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/pipeline"
	"github.com/loanlens/loanlens/internal/tui/theme"
)

// Chart names, used as file stems and URL path segments.
const (
	ChartLoansOverTime  = "loans-over-time"
	ChartAmountOverTime = "amount-over-time"
	ChartWeekday        = "weekday"
	ChartCondition      = "condition"
	ChartGrade          = "grade"
	ChartHistogram      = "amount-histogram"
	ChartPurpose        = "amount-by-purpose"
)

// Names lists every dataset chart in dashboard order.
var Names = []string{
	ChartLoansOverTime, ChartAmountOverTime, ChartWeekday,
	ChartCondition, ChartGrade, ChartHistogram, ChartPurpose,
}

var (
	// ErrUnknownChart is returned for a name not in Names.
	ErrUnknownChart = errors.New("unknown chart")
	// ErrNoData is returned when a chart has nothing to plot.
	ErrNoData = errors.New("no data to plot")
)

func hexColor(c lipgloss.Color) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(string(c), "#"))
}

func termColor(i int) drawing.Color {
	return hexColor(theme.Print.Term(i))
}

// conditionColor colors good and bad loans by role and any other label by
// its position.
func conditionColor(key string, i int) drawing.Color {
	switch key {
	case model.LabelGood:
		return hexColor(theme.Print.ConditionColor(true))
	case model.LabelBad:
		return hexColor(theme.Print.ConditionColor(false))
	}
	return termColor(i)
}

// Renderer draws charts at a fixed size.
type Renderer struct {
	Width  int
	Height int
}

// New returns a Renderer with the default 1024x512 canvas.
func New() *Renderer {
	return &Renderer{Width: 1024, Height: 512}
}

// Render draws the named chart for d. condition selects the loan condition
// for the financial charts; empty means the first condition in the data.
func (r *Renderer) Render(w io.Writer, name string, d *model.Dataset, condition string) error {
	switch name {
	case ChartLoansOverTime:
		pts, err := pipeline.CountByDate(d)
		if err != nil {
			return err
		}
		return r.TimeLine(w, "Number of Loans Issued Over Time", "Number of Loans", pts, theme.Print.LoanCount)
	case ChartAmountOverTime:
		pts, err := pipeline.SumAmountByDate(d)
		if err != nil {
			return err
		}
		return r.TimeLine(w, "Total Loan Amount Issued Over Time", "Total Loan Amount", pts, theme.Print.LoanAmount)
	case ChartWeekday:
		counts, err := pipeline.CountByWeekday(d)
		if err != nil {
			return err
		}
		return r.Bars(w, "Distribution of Loans by Day of the Week", counts, theme.Print.LoanCount)
	case ChartCondition:
		counts, err := pipeline.CountBy(d, model.ColLoanCondition, pipeline.ByCountDesc)
		if err != nil {
			return err
		}
		return r.Donut(w, "Distribution of Loans by Condition", counts)
	case ChartGrade:
		counts, err := pipeline.CountBy(d, model.ColGrade, pipeline.ByKey)
		if err != nil {
			return err
		}
		return r.Bars(w, "Distribution of Loans by Grade", counts, theme.Print.Grade)
	case ChartHistogram, ChartPurpose:
		filtered, cond, err := filterCondition(d, condition)
		if err != nil {
			return err
		}
		if name == ChartHistogram {
			bins, err := pipeline.Histogram(filtered, pipeline.DefaultBins)
			if err != nil {
				return err
			}
			return r.Histogram(w, "Loan Amount Distribution ("+cond+")", bins, pipeline.TermValues(filtered))
		}
		boxes, err := pipeline.BoxStats(filtered)
		if err != nil {
			return err
		}
		return r.Medians(w, "Median Loan Amount by Purpose ("+cond+")", boxes)
	}
	return fmt.Errorf("%w: %q", ErrUnknownChart, name)
}

func filterCondition(d *model.Dataset, condition string) (*model.Dataset, string, error) {
	if condition == "" {
		conds, err := pipeline.ConditionValues(d)
		if err != nil {
			return nil, "", err
		}
		if len(conds) == 0 {
			return nil, "", ErrNoData
		}
		condition = conds[0]
	}
	filtered, err := pipeline.FilterByCondition(d, condition)
	return filtered, condition, err
}

// TimeLine draws a line with markers over dates.
func (r *Renderer) TimeLine(w io.Writer, title, yName string, pts []model.DatePoint, c lipgloss.Color) error {
	if len(pts) == 0 {
		return ErrNoData
	}
	xs := make([]time.Time, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.Date
		ys[i] = p.Value
	}
	if len(pts) == 1 {
		// A single point has no x range; pad it with a second day.
		xs = append(xs, xs[0].AddDate(0, 0, 1))
		ys = append(ys, ys[0])
	}
	peak := 0.0
	for _, y := range ys {
		peak = max(peak, y)
	}
	if peak == 0 {
		peak = 1
	}

	ch := chart.Chart{
		Title:      title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Issue Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: 0, Max: peak * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return cli.FormatCompact(f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    yName,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: hexColor(c),
					StrokeWidth: 2,
					DotColor:    hexColor(c),
					DotWidth:    3,
				},
			},
		},
	}
	return ch.Render(chart.PNG, w)
}

// Bars draws one bar per category.
func (r *Renderer) Bars(w io.Writer, title string, counts []model.CategoryCount, c lipgloss.Color) error {
	if len(counts) == 0 {
		return ErrNoData
	}
	fill := hexColor(c)
	bars := make([]chart.Value, len(counts))
	for i, c := range counts {
		bars[i] = chart.Value{
			Label: c.Key,
			Value: float64(c.Count),
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		}
	}
	return r.renderBars(w, title, bars)
}

// Medians draws the median loan amount per purpose and term group.
func (r *Renderer) Medians(w io.Writer, title string, boxes []model.BoxStats) error {
	if len(boxes) == 0 {
		return ErrNoData
	}
	terms := map[string]int{}
	bars := make([]chart.Value, len(boxes))
	for i, b := range boxes {
		idx, ok := terms[b.Term]
		if !ok {
			idx = len(terms)
			terms[b.Term] = idx
		}
		bars[i] = chart.Value{
			Label: b.Purpose + " / " + b.Term,
			Value: b.Median,
			Style: chart.Style{FillColor: termColor(idx), StrokeColor: termColor(idx)},
		}
	}
	return r.renderBars(w, title, bars)
}

func (r *Renderer) renderBars(w io.Writer, title string, bars []chart.Value) error {
	// A flat series has no y range; anchor the axis at zero.
	peak := 0.0
	for _, b := range bars {
		peak = max(peak, b.Value)
	}
	if peak == 0 {
		peak = 1
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   max(8, (r.Width-120)/(len(bars)*2)),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: peak * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return cli.FormatCompact(f)
				}
				return ""
			},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}

// Histogram draws loan amount bins as one filled series per term, plotted at
// bin midpoints.
func (r *Renderer) Histogram(w io.Writer, title string, bins []model.HistogramBin, terms []string) error {
	if len(bins) < 2 {
		return ErrNoData
	}
	peak := 0
	for _, b := range bins {
		for _, n := range b.ByTerm {
			peak = max(peak, n)
		}
	}
	xs := make([]float64, len(bins))
	for i, b := range bins {
		xs[i] = (b.Lower + b.Upper) / 2
	}
	series := make([]chart.Series, 0, len(terms))
	for j, term := range terms {
		ys := make([]float64, len(bins))
		for i, b := range bins {
			ys[i] = float64(b.ByTerm[term])
		}
		c := termColor(j)
		series = append(series, chart.ContinuousSeries{
			Name:    term,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: c,
				StrokeWidth: 2,
				FillColor:   c.WithAlpha(64),
			},
		})
	}

	ch := chart.Chart{
		Title:      title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name: "Loan Amount",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return cli.FormatCompact(f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max(peak, 1)) * 1.1},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// Donut draws category shares as a ring.
func (r *Renderer) Donut(w io.Writer, title string, counts []model.CategoryCount) error {
	values := make([]chart.Value, 0, len(counts))
	for i, c := range counts {
		if c.Count == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: c.Key,
			Value: float64(c.Count),
			Style: chart.Style{FillColor: conditionColor(c.Key, i), StrokeColor: drawing.ColorWhite},
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}
	dc := chart.DonutChart{
		Title:  title,
		Width:  r.Height,
		Height: r.Height,
		Values: values,
	}
	return dc.Render(chart.PNG, w)
}

// WriteAll renders every chart into dir as <name>.png. Charts whose columns
// are missing from d are skipped and reported in the returned error list.
func (r *Renderer) WriteAll(dir string, d *model.Dataset, condition string) ([]string, []error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, []error{fmt.Errorf("creating %s: %w", dir, err)}
	}
	var (
		written []string
		errs    []error
	)
	for _, name := range Names {
		path := filepath.Join(dir, name+".png")
		if err := r.writeFile(path, name, d, condition); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		written = append(written, path)
	}
	return written, errs
}

func (r *Renderer) writeFile(path, name string, d *model.Dataset, condition string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return r.Render(f, name, d, condition)
}
