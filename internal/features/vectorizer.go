package features

import (
	"github.com/loanlens/loanlens/internal/model"
)

// Mapping is the intermediate column -> value mapping produced by Encode.
type Mapping map[string]float64

// Encoding is the result of encoding one applicant.
// Unknown lists attributes whose value was outside the catalogue; their
// columns are all zero rather than an error.
type Encoding struct {
	Mapping Mapping
	Unknown []string
}

// Vector is a feature vector aligned to a training-time schema.
type Vector struct {
	Names  []string
	Values []float64
}

// Len returns the number of columns.
func (v Vector) Len() int {
	return len(v.Values)
}

// Get returns the value of the named column.
func (v Vector) Get(name string) (float64, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Encode converts applicant attributes into the intermediate feature mapping:
// one-hot columns per categorical, ordinal grade, numerics passed through.
func Encode(a model.Applicant) Encoding {
	m := make(Mapping, 24)
	var unknown []string

	m[ColEmploymentLength] = a.EmploymentLength
	m[ColAnnualIncome] = a.AnnualIncome
	m[ColLoanAmount] = a.LoanAmount
	m[ColDTI] = a.DTI

	selected := []struct {
		attr  Categorical
		value string
	}{
		{HomeOwnership, a.HomeOwnership},
		{IncomeCategory, a.IncomeCategory},
		{Term, a.Term},
		{Purpose, a.Purpose},
		{InterestPayments, a.InterestPayments},
	}
	for _, s := range selected {
		if !oneHot(m, s.attr, s.value) {
			unknown = append(unknown, s.attr.Prefix)
		}
	}

	if rank, ok := GradeRank(a.Grade); ok {
		m[ColGrade] = float64(rank)
	} else {
		unknown = append(unknown, ColGrade)
	}

	return Encoding{Mapping: m, Unknown: unknown}
}

// oneHot writes every column of attr, setting only value's column to 1.
// It reports whether value was a known category.
func oneHot(m Mapping, attr Categorical, value string) bool {
	known := false
	for _, v := range attr.Values {
		if v == value {
			m[attr.Column(v)] = 1
			known = true
			continue
		}
		m[attr.Column(v)] = 0
	}
	return known
}

// Align reindexes m to schema: columns not in schema are dropped and schema
// columns absent from m are zero. The result always has len(schema) columns
// in schema order.
func Align(m Mapping, schema []string) Vector {
	v := Vector{
		Names:  make([]string, len(schema)),
		Values: make([]float64, len(schema)),
	}
	copy(v.Names, schema)
	for i, name := range schema {
		v.Values[i] = m[name]
	}
	return v
}

// Vectorize encodes a and aligns it to schema in one step.
func Vectorize(a model.Applicant, schema []string) (Vector, []string) {
	enc := Encode(a)
	return Align(enc.Mapping, schema), enc.Unknown
}

// DefaultSchema is the column order the bundled model was trained on.
func DefaultSchema() []string {
	cols := []string{ColEmploymentLength}
	cols = append(cols, HomeOwnership.Columns()...)
	cols = append(cols, IncomeCategory.Columns()...)
	cols = append(cols, ColAnnualIncome, ColLoanAmount)
	cols = append(cols, Term.Columns()...)
	cols = append(cols, Purpose.Columns()...)
	cols = append(cols, InterestPayments.Columns()...)
	cols = append(cols, ColGrade, ColDTI)
	return cols
}
