package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/loanlens/loanlens/internal/features"
	"github.com/loanlens/loanlens/internal/model"
)

// ApplicantInput is the editable state of the prediction form. Numeric
// fields are held as text while the user types.
type ApplicantInput struct {
	EmploymentLength string
	HomeOwnership    string
	IncomeCategory   string
	AnnualIncome     string
	LoanAmount       string
	Term             string
	Purpose          string
	InterestPayments string
	Grade            string
	DTI              string
}

// NewApplicantInput seeds the form from a.
func NewApplicantInput(a model.Applicant) *ApplicantInput {
	return &ApplicantInput{
		EmploymentLength: formatFloat(a.EmploymentLength),
		HomeOwnership:    a.HomeOwnership,
		IncomeCategory:   a.IncomeCategory,
		AnnualIncome:     formatFloat(a.AnnualIncome),
		LoanAmount:       formatFloat(a.LoanAmount),
		Term:             a.Term,
		Purpose:          a.Purpose,
		InterestPayments: a.InterestPayments,
		Grade:            a.Grade,
		DTI:              formatFloat(a.DTI),
	}
}

// Applicant parses and validates the form values.
func (in *ApplicantInput) Applicant() (model.Applicant, error) {
	a := model.Applicant{
		HomeOwnership:    in.HomeOwnership,
		IncomeCategory:   in.IncomeCategory,
		Term:             in.Term,
		Purpose:          in.Purpose,
		InterestPayments: in.InterestPayments,
		Grade:            in.Grade,
	}
	for _, f := range numericFields {
		v, err := parseNumber(*f.text(in))
		if err != nil {
			return model.Applicant{}, fmt.Errorf("%s: %w", f.title, err)
		}
		f.set(&a, v)
	}
	if err := features.Validate(a); err != nil {
		return model.Applicant{}, err
	}
	return a, nil
}

type numericField struct {
	field string
	title string
	hint  string
	text  func(*ApplicantInput) *string
	set   func(*model.Applicant, float64)
}

var numericFields = []numericField{
	{
		field: "EmploymentLength", title: "Employment Length", hint: "years, 0 to 50",
		text: func(in *ApplicantInput) *string { return &in.EmploymentLength },
		set:  func(a *model.Applicant, v float64) { a.EmploymentLength = v },
	},
	{
		field: "AnnualIncome", title: "Annual Income", hint: "10,000 to 500,000",
		text: func(in *ApplicantInput) *string { return &in.AnnualIncome },
		set:  func(a *model.Applicant, v float64) { a.AnnualIncome = v },
	},
	{
		field: "LoanAmount", title: "Loan Amount", hint: "1,000 to 100,000",
		text: func(in *ApplicantInput) *string { return &in.LoanAmount },
		set:  func(a *model.Applicant, v float64) { a.LoanAmount = v },
	},
	{
		field: "DTI", title: "Debt-to-Income Ratio", hint: "0 to 50",
		text: func(in *ApplicantInput) *string { return &in.DTI },
		set:  func(a *model.Applicant, v float64) { a.DTI = v },
	},
}

func (f numericField) input(in *ApplicantInput) *huh.Input {
	return huh.NewInput().
		Title(f.title).
		Description(f.hint).
		Value(f.text(in)).
		Validate(func(s string) error {
			v, err := parseNumber(s)
			if err != nil {
				return err
			}
			a := model.DefaultApplicant()
			f.set(&a, v)
			if err := features.ValidateField(a, f.field); err != nil {
				return fmt.Errorf("out of range (%s)", f.hint)
			}
			return nil
		})
}

func selectField(title string, values []string, target *string) *huh.Select[string] {
	return huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(values...)...).
		Value(target)
}

// NewApplicantForm builds the prediction form over in. Choices come from the
// feature catalogue so the form cannot produce an unknown category.
func NewApplicantForm(in *ApplicantInput) *huh.Form {
	num := make(map[string]*huh.Input, len(numericFields))
	for _, f := range numericFields {
		num[f.field] = f.input(in)
	}

	return huh.NewForm(
		huh.NewGroup(
			num["EmploymentLength"],
			selectField("Home Ownership", features.HomeOwnership.Values, &in.HomeOwnership),
			selectField("Income Category", features.IncomeCategory.Values, &in.IncomeCategory),
			num["AnnualIncome"],
			num["LoanAmount"],
		).Title("Borrower"),
		huh.NewGroup(
			selectField("Term", features.Term.Values, &in.Term),
			selectField("Purpose", features.Purpose.Values, &in.Purpose),
			selectField("Interest Payments", features.InterestPayments.Values, &in.InterestPayments),
			selectField("Grade", features.Grades, &in.Grade),
			num["DTI"],
		).Title("Loan"),
	).WithShowHelp(true)
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, errors.New("required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
