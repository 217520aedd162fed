package model

import "time"

// Prediction labels.
const (
	LabelGood = "Good Loan"
	LabelBad  = "Bad Loan"
)

// Applicant holds the borrower attributes entered on the prediction form.
type Applicant struct {
	EmploymentLength float64 `json:"employment_length" validate:"gte=0,lte=50"`
	HomeOwnership    string  `json:"home_ownership" validate:"required,oneof=MORTGAGE OWN RENT"`
	IncomeCategory   string  `json:"income_category" validate:"required,oneof=Low Medium High"`
	AnnualIncome     float64 `json:"annual_income" validate:"gte=10000,lte=500000"`
	LoanAmount       float64 `json:"loan_amount" validate:"gte=1000,lte=100000"`
	Term             string  `json:"term" validate:"required,oneof='36 months' '60 months'"`
	Purpose          string  `json:"purpose" validate:"required,oneof=debt_consolidation credit_card home_improvement major_purchase other"`
	InterestPayments string  `json:"interest_payments" validate:"required,oneof=High Low"`
	Grade            string  `json:"grade" validate:"required,oneof=A B C D E F G"`
	DTI              float64 `json:"dti" validate:"gte=0,lte=50"`
}

// DefaultApplicant returns the form's initial values.
func DefaultApplicant() Applicant {
	return Applicant{
		EmploymentLength: 1.0,
		HomeOwnership:    "MORTGAGE",
		IncomeCategory:   "Low",
		AnnualIncome:     50000,
		LoanAmount:       15000,
		Term:             "36 months",
		Purpose:          "debt_consolidation",
		InterestPayments: "High",
		Grade:            "A",
		DTI:              15.0,
	}
}

// Prediction is a scored classification for one applicant.
type Prediction struct {
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}

// Good reports whether the prediction crossed the threshold.
func (p Prediction) Good() bool {
	return p.Label == LabelGood
}

// PredictionRecord is a prediction persisted to the local history.
type PredictionRecord struct {
	ID        string
	CreatedAt time.Time
	Applicant Applicant
	Prediction
}
