package predict

import "github.com/loanlens/loanlens/internal/model"

// Threshold is the percentage a prediction must exceed to count as good.
const Threshold = 50.0

// Gauge colors.
const (
	ColorGood = "#FFA07A"
	ColorBad  = "salmon"
)

// Classify scales p to a percentage and labels it. Exactly 50 is a bad loan.
func Classify(p float64) model.Prediction {
	pct := p * 100
	label := model.LabelBad
	if pct > Threshold {
		label = model.LabelGood
	}
	return model.Prediction{Percent: pct, Label: label}
}

// GaugeColor returns the bar color for a prediction.
func GaugeColor(p model.Prediction) string {
	if p.Good() {
		return ColorGood
	}
	return ColorBad
}
