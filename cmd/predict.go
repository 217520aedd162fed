package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/export"
	"github.com/loanlens/loanlens/internal/features"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagApplicant   = model.DefaultApplicant()
	flagInteractive bool
	flagPredictJSON bool
	flagGaugePNG    string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score one borrower as a good or bad loan",
	Long:  "Score one borrower with the loaded classifier. Every field has a flag; --interactive opens a form instead.",
	RunE:  runPredict,
}

func init() {
	f := predictCmd.Flags()
	a := &flagApplicant
	f.Float64Var(&a.EmploymentLength, "employment-length", a.EmploymentLength, "Years employed (0-50)")
	f.StringVar(&a.HomeOwnership, "home-ownership", a.HomeOwnership, "MORTGAGE, OWN or RENT")
	f.StringVar(&a.IncomeCategory, "income-category", a.IncomeCategory, "Low, Medium or High")
	f.Float64Var(&a.AnnualIncome, "annual-income", a.AnnualIncome, "Annual income (10000-500000)")
	f.Float64Var(&a.LoanAmount, "loan-amount", a.LoanAmount, "Loan amount (1000-100000)")
	f.StringVar(&a.Term, "term", a.Term, "'36 months' or '60 months'")
	f.StringVar(&a.Purpose, "purpose", a.Purpose, "debt_consolidation, credit_card, home_improvement, major_purchase or other")
	f.StringVar(&a.InterestPayments, "interest-payments", a.InterestPayments, "High or Low")
	f.StringVar(&a.Grade, "grade", a.Grade, "Grade A-G")
	f.Float64Var(&a.DTI, "dti", a.DTI, "Debt-to-income ratio (0-50)")

	f.BoolVarP(&flagInteractive, "interactive", "i", false, "Fill in the borrower with a form")
	f.BoolVar(&flagPredictJSON, "json", false, "Print the prediction as JSON")
	f.StringVar(&flagGaugePNG, "png", "", "Also write the gauge as a PNG to this path")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, _ []string) error {
	applicant := flagApplicant
	if flagInteractive {
		in := tui.NewApplicantInput(applicant)
		if err := tui.NewApplicantForm(in).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("prediction form: %w", err)
		}
		a, err := in.Applicant()
		if err != nil {
			return err
		}
		applicant = a
	} else if err := features.Validate(applicant); err != nil {
		return err
	}

	svc, closeStore, err := loadPredictor()
	if err != nil {
		return err
	}
	defer closeStore()

	pred, err := svc.Predict(cmd.Context(), applicant)
	if err != nil {
		return err
	}

	if flagGaugePNG != "" {
		if err := writeGauge(flagGaugePNG, pred); err != nil {
			return err
		}
	}

	if flagPredictJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Applicant model.Applicant `json:"applicant"`
			model.Prediction
		}{applicant, pred})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("LOAN PREDICTION"))
	fmt.Println()
	fmt.Printf("  %s\n\n", cli.RenderGauge(pred.Percent, pred.Good(), 50))
	fmt.Println(cli.RenderMetric("Probability", cli.FormatPercent(pred.Percent)))
	fmt.Println(cli.RenderMetric("Prediction", pred.Label))
	if flagGaugePNG != "" {
		fmt.Println(cli.RenderMetric("Gauge", flagGaugePNG))
	}
	fmt.Println()
	return nil
}

func writeGauge(path string, pred model.Prediction) (err error) {
	f, err := os.Create(path) //nolint:gosec // output path is chosen by the local user
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.New().Gauge(f, pred)
}
