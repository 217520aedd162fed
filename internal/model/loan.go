// Package model defines domain types for loan records, aggregates, and predictions.
package model

import (
	"fmt"
	"time"
)

// Column names as they appear in the dataset snapshot header.
const (
	ColID               = "id"
	ColIssueDate        = "issue_date"
	ColIssueWeekday     = "issue_weekday"
	ColLoanAmount       = "loan_amount"
	ColInterestRate     = "interest_rate"
	ColTerm             = "term"
	ColPurpose          = "purpose"
	ColLoanCondition    = "loan_condition"
	ColGrade            = "grade"
	ColEmploymentLength = "employment_length"
	ColHomeOwnership    = "home_ownership"
	ColIncomeCategory   = "income_category"
	ColAnnualIncome     = "annual_income"
	ColInterestPayments = "interest_payments"
	ColDTI              = "dti"
	ColTotalPayment     = "total_payment"
	ColInstallment      = "installment"
)

// Loan is one row of the cleaned loan dataset.
type Loan struct {
	ID               string
	IssueDate        time.Time
	IssueWeekday     string
	LoanAmount       float64
	InterestRate     float64
	Term             string
	Purpose          string
	LoanCondition    string
	Grade            string
	EmploymentLength float64
	HomeOwnership    string
	IncomeCategory   string
	AnnualIncome     float64
	InterestPayments string
	DTI              float64
	TotalPayment     float64
	Installment      float64
}

// Field returns the categorical value of the named column.
// Numeric and date columns are not categorical and return false.
func (l Loan) Field(column string) (string, bool) {
	switch column {
	case ColID:
		return l.ID, true
	case ColIssueWeekday:
		return l.IssueWeekday, true
	case ColTerm:
		return l.Term, true
	case ColPurpose:
		return l.Purpose, true
	case ColLoanCondition:
		return l.LoanCondition, true
	case ColGrade:
		return l.Grade, true
	case ColHomeOwnership:
		return l.HomeOwnership, true
	case ColIncomeCategory:
		return l.IncomeCategory, true
	case ColInterestPayments:
		return l.InterestPayments, true
	}
	return "", false
}

// Dataset is the read-only in-memory loan table.
type Dataset struct {
	Loans   []Loan
	Columns map[string]struct{}
}

// NewDataset builds a dataset from records and the header columns they came from.
func NewDataset(loans []Loan, columns []string) *Dataset {
	cols := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		cols[c] = struct{}{}
	}
	return &Dataset{Loans: loans, Columns: cols}
}

// Has reports whether the snapshot carried the named column.
func (d *Dataset) Has(column string) bool {
	_, ok := d.Columns[column]
	return ok
}

// Require returns a MissingColumnError for the first column the snapshot lacks.
func (d *Dataset) Require(columns ...string) error {
	for _, c := range columns {
		if !d.Has(c) {
			return &MissingColumnError{Column: c}
		}
	}
	return nil
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Loans)
}

// MissingColumnError is returned when an aggregation references a column
// the loaded snapshot does not have.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("dataset has no %q column", e.Column)
}
