// Package features turns applicant attributes into the classifier's input vector.
package features

import (
	"fmt"
	"strings"
)

// Categorical is an enumerated attribute encoded one column per value,
// named {Prefix}_{value}.
type Categorical struct {
	Prefix string
	Values []string
}

// Column returns the one-hot column name for value.
func (c Categorical) Column(value string) string {
	return c.Prefix + "_" + value
}

// Columns returns every one-hot column for the attribute, in value order.
func (c Categorical) Columns() []string {
	cols := make([]string, len(c.Values))
	for i, v := range c.Values {
		cols[i] = c.Column(v)
	}
	return cols
}

// Contains reports whether value is a known category.
func (c Categorical) Contains(value string) bool {
	for _, v := range c.Values {
		if v == value {
			return true
		}
	}
	return false
}

// Column names for pass-through numerics and the ordinal grade.
const (
	ColEmploymentLength = "employment_length"
	ColAnnualIncome     = "annual_income"
	ColLoanAmount       = "loan_amount"
	ColDTI              = "dti"
	ColGrade            = "grade"
)

// Grades in rank order; the ordinal encoding is the index.
var Grades = []string{"A", "B", "C", "D", "E", "F", "G"}

// Categorical attributes known to the trained model.
var (
	HomeOwnership = Categorical{
		Prefix: "home_ownership",
		Values: []string{"MORTGAGE", "OWN", "RENT"},
	}
	IncomeCategory = Categorical{
		Prefix: "income_category",
		Values: []string{"Low", "Medium", "High"},
	}
	Term = Categorical{
		Prefix: "term",
		Values: []string{"36 months", "60 months"},
	}
	Purpose = Categorical{
		Prefix: "purpose",
		Values: []string{"debt_consolidation", "credit_card", "home_improvement", "major_purchase", "other"},
	}
	InterestPayments = Categorical{
		Prefix: "interest_payments",
		Values: []string{"High", "Low"},
	}
)

// Categoricals lists every one-hot attribute in encoding order.
var Categoricals = []Categorical{HomeOwnership, IncomeCategory, Term, Purpose, InterestPayments}

// Numerics lists the pass-through columns.
var Numerics = []string{ColEmploymentLength, ColAnnualIncome, ColLoanAmount, ColDTI}

func init() {
	if err := checkCollisions(Categoricals, append([]string{ColGrade}, Numerics...)); err != nil {
		panic(err)
	}
}

// checkCollisions fails when two attributes would emit the same column name,
// or when one prefix is a prefix of another and their columns could overlap.
func checkCollisions(cats []Categorical, scalars []string) error {
	seen := make(map[string]string)
	for _, s := range scalars {
		seen[s] = s
	}
	for _, c := range cats {
		for _, col := range c.Columns() {
			if owner, ok := seen[col]; ok {
				return fmt.Errorf("feature column %q emitted by both %s and %s", col, owner, c.Prefix)
			}
			seen[col] = c.Prefix
		}
	}
	for i, a := range cats {
		for j, b := range cats {
			if i != j && strings.HasPrefix(b.Prefix, a.Prefix+"_") {
				return fmt.Errorf("feature prefix %q shadows %q", a.Prefix, b.Prefix)
			}
		}
	}
	return nil
}

// GradeRank returns the zero-based rank of a grade letter, or false if unknown.
func GradeRank(grade string) (int, bool) {
	for i, g := range Grades {
		if g == grade {
			return i, true
		}
	}
	return 0, false
}
