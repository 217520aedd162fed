package export

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/predict"
	"github.com/loanlens/loanlens/internal/tui/theme"
)

var gaugeTrack = drawing.ColorFromHex("F8F8F8")

// Gauge draws a prediction as a donut: the filled arc is the percentage,
// colored by which side of the threshold it falls on.
func (r *Renderer) Gauge(w io.Writer, p model.Prediction) error {
	fill := gaugeFill(p)
	pct := max(0, min(p.Percent, 100))

	var values []chart.Value
	if pct > 0 {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%.2f%%", pct),
			Value: pct,
			Style: chart.Style{FillColor: fill, StrokeColor: drawing.ColorWhite},
		})
	}
	if pct < 100 {
		values = append(values, chart.Value{
			Label: " ",
			Value: 100 - pct,
			Style: chart.Style{FillColor: gaugeTrack, StrokeColor: drawing.ColorWhite},
		})
	}

	dc := chart.DonutChart{
		Title:  gaugeTitle(p),
		Width:  r.Height,
		Height: r.Height,
		Values: values,
	}
	return dc.Render(chart.PNG, w)
}

func gaugeTitle(p model.Prediction) string {
	return "Prediction: " + p.Label
}

func gaugeFill(p model.Prediction) drawing.Color {
	return hexColor(theme.Print.Gauge(predict.GaugeColor(p) == predict.ColorGood))
}
