package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/predict"
	"github.com/loanlens/loanlens/internal/tui/components"
	"github.com/loanlens/loanlens/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// predictState tracks the prediction form and its last result.
type predictState struct {
	input     *ApplicantInput
	form      *huh.Form
	editing   bool
	running   bool
	applicant model.Applicant
	result    *model.Prediction
	err       error
}

// PredictionMsg carries a finished prediction back to the update loop.
type PredictionMsg struct {
	Applicant  model.Applicant
	Prediction model.Prediction
	Err        error
}

func newPredictState() predictState {
	return predictState{input: NewApplicantInput(model.DefaultApplicant())}
}

// startForm opens the form over the current input values.
func (a App) startForm() (App, tea.Cmd) {
	a.pred.form = NewApplicantForm(a.pred.input).WithTheme(huh.ThemeBase16())
	if a.width > 0 {
		a.pred.form = a.pred.form.WithWidth(components.LayoutRow(a.contentWidth(), 2)[0])
	}
	a.pred.editing = true
	return a, a.pred.form.Init()
}

func (a App) updatePredictForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.pred.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.pred.form = f
	}

	switch a.pred.form.State {
	case huh.StateCompleted:
		a.pred.editing = false
		a.pred.form = nil
		applicant, err := a.pred.input.Applicant()
		if err != nil {
			a.pred.err = err
			return a, nil
		}
		a.pred.running = true
		a.pred.err = nil
		return a, predictCmd(a.predictor, applicant)
	case huh.StateAborted:
		a.pred.editing = false
		a.pred.form = nil
		return a, nil
	}
	return a, cmd
}

func predictCmd(svc *predict.Service, applicant model.Applicant) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p, err := svc.Predict(ctx, applicant)
		return PredictionMsg{Applicant: applicant, Prediction: p, Err: err}
	}
}

func (a App) renderPredictTab(cw int) string {
	t := theme.Active
	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}

	if a.predictor == nil {
		return components.ContentCard("Loan Prediction", components.Warning("no model loaded"), cw)
	}

	var left string
	if a.pred.form != nil {
		left = components.ContentCard("Applicant", a.pred.form.View(), halves[0])
	} else {
		left = components.ContentCard("Applicant", a.renderApplicant(), halves[0])
	}

	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	var right string
	switch {
	case a.pred.running:
		right = dim.Render("Scoring…")
	case a.pred.err != nil:
		right = components.Warning(a.pred.err.Error())
	case a.pred.result != nil:
		right = components.Gauge(*a.pred.result, components.CardInnerWidth(halves[1])-2) +
			"\n\n" + dim.Render(fmt.Sprintf("Threshold %.0f%%", predict.Threshold))
	default:
		right = dim.Render("Fill in the form and submit to score an applicant.")
	}
	if !a.pred.editing {
		right += "\n\n" + dim.Render("[e] edit  [n] new applicant")
	}
	resultCard := components.ContentCard("Good Loan Probability", right, halves[1])

	if a.isCompactLayout() {
		return resultCard + "\n" + left
	}
	return components.CardRow([]string{left, resultCard})
}

func (a App) renderApplicant() string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	in := a.pred.input
	rows := []struct{ k, v string }{
		{"Employment Length", in.EmploymentLength + " yrs"},
		{"Home Ownership", in.HomeOwnership},
		{"Income Category", in.IncomeCategory},
		{"Annual Income", moneyText(in.AnnualIncome)},
		{"Loan Amount", moneyText(in.LoanAmount)},
		{"Term", in.Term},
		{"Purpose", in.Purpose},
		{"Interest Payments", in.InterestPayments},
		{"Grade", in.Grade},
		{"Debt-to-Income", in.DTI},
	}
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label.Render(fmt.Sprintf("%-18s", r.k)))
		b.WriteString(value.Render(r.v))
	}
	return b.String()
}

func moneyText(s string) string {
	v, err := parseNumber(s)
	if err != nil {
		return s
	}
	return cli.FormatMoney(v)
}
