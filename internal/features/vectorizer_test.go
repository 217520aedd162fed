package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanlens/loanlens/internal/model"
)

func rentApplicant() model.Applicant {
	return model.Applicant{
		EmploymentLength: 1.0,
		HomeOwnership:    "RENT",
		IncomeCategory:   "Low",
		AnnualIncome:     50000,
		LoanAmount:       15000,
		Term:             "36 months",
		Purpose:          "debt_consolidation",
		InterestPayments: "High",
		Grade:            "B",
		DTI:              15.0,
	}
}

func TestEncode_RentApplicant(t *testing.T) {
	enc := Encode(rentApplicant())

	assert.Empty(t, enc.Unknown)
	assert.Equal(t, 1.0, enc.Mapping["home_ownership_RENT"])
	assert.Equal(t, 0.0, enc.Mapping["home_ownership_MORTGAGE"])
	assert.Equal(t, 0.0, enc.Mapping["home_ownership_OWN"])
	assert.Equal(t, 1.0, enc.Mapping["grade"])
	assert.Equal(t, 50000.0, enc.Mapping["annual_income"])
	assert.Equal(t, 15000.0, enc.Mapping["loan_amount"])
	assert.Equal(t, 1.0, enc.Mapping["term_36 months"])
	assert.Equal(t, 0.0, enc.Mapping["term_60 months"])
	assert.Equal(t, 15.0, enc.Mapping["dti"])
}

func TestEncode_OneHotExclusive(t *testing.T) {
	// Every combination of every categorical: exactly one hot column per
	// attribute, and the hot column belongs to the selected value.
	base := DefaultSchema()
	for _, ho := range HomeOwnership.Values {
		for _, ic := range IncomeCategory.Values {
			for _, term := range Term.Values {
				for _, p := range Purpose.Values {
					for _, ip := range InterestPayments.Values {
						a := model.DefaultApplicant()
						a.HomeOwnership, a.IncomeCategory, a.Term = ho, ic, term
						a.Purpose, a.InterestPayments = p, ip

						enc := Encode(a)
						require.Empty(t, enc.Unknown)
						selected := map[string]string{
							HomeOwnership.Prefix:    ho,
							IncomeCategory.Prefix:   ic,
							Term.Prefix:             term,
							Purpose.Prefix:          p,
							InterestPayments.Prefix: ip,
						}
						for _, cat := range Categoricals {
							hot := 0
							for _, v := range cat.Values {
								val := enc.Mapping[cat.Column(v)]
								if v == selected[cat.Prefix] {
									require.Equal(t, 1.0, val, cat.Column(v))
									hot++
								} else {
									require.Equal(t, 0.0, val, cat.Column(v))
								}
							}
							require.Equal(t, 1, hot, cat.Prefix)
						}
						require.Len(t, Align(enc.Mapping, base).Values, len(base))
					}
				}
			}
		}
	}
}

func TestEncode_GradeRank(t *testing.T) {
	for i, g := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		a := model.DefaultApplicant()
		a.Grade = g
		enc := Encode(a)
		assert.Equal(t, float64(i), enc.Mapping[ColGrade], "grade %s", g)
	}
}

func TestEncode_UnknownCategory(t *testing.T) {
	a := rentApplicant()
	a.HomeOwnership = "NONE"
	a.Grade = "Z"

	enc := Encode(a)

	assert.Equal(t, []string{HomeOwnership.Prefix, ColGrade}, enc.Unknown)
	for _, col := range HomeOwnership.Columns() {
		assert.Equal(t, 0.0, enc.Mapping[col], col)
	}
	_, hasGrade := enc.Mapping[ColGrade]
	assert.False(t, hasGrade)

	v := Align(enc.Mapping, DefaultSchema())
	g, ok := v.Get(ColGrade)
	require.True(t, ok)
	assert.Equal(t, 0.0, g)
}

func TestAlign_DropAndZeroFill(t *testing.T) {
	m := Mapping{"a": 1, "b": 2, "extra": 9}
	schema := []string{"b", "missing", "a"}

	v := Align(m, schema)

	assert.Equal(t, schema, v.Names)
	assert.Equal(t, []float64{2, 0, 1}, v.Values)
	_, ok := v.Get("extra")
	assert.False(t, ok)
}

func TestAlign_EmptySchema(t *testing.T) {
	v := Align(Encode(rentApplicant()).Mapping, nil)
	assert.Equal(t, 0, v.Len())
}

func TestAlign_DoesNotAliasSchema(t *testing.T) {
	schema := []string{"grade"}
	v := Align(Mapping{"grade": 3}, schema)
	schema[0] = "changed"
	assert.Equal(t, "grade", v.Names[0])
}

func TestVectorize_Deterministic(t *testing.T) {
	schema := DefaultSchema()
	first, _ := Vectorize(rentApplicant(), schema)
	for range 10 {
		again, _ := Vectorize(rentApplicant(), schema)
		require.Equal(t, first, again)
	}
}

func TestVectorize_SchemaOrder(t *testing.T) {
	schema := []string{"grade", "home_ownership_RENT", "annual_income", "not_trained"}
	v, unknown := Vectorize(rentApplicant(), schema)
	assert.Empty(t, unknown)
	assert.Equal(t, []float64{1, 1, 50000, 0}, v.Values)
}

func TestDefaultSchema_CoversEncoding(t *testing.T) {
	schema := DefaultSchema()
	enc := Encode(rentApplicant())
	assert.Len(t, schema, len(enc.Mapping))
	for _, col := range schema {
		_, ok := enc.Mapping[col]
		assert.True(t, ok, col)
	}
}

func TestCheckCollisions(t *testing.T) {
	require.NoError(t, checkCollisions(Categoricals, append([]string{ColGrade}, Numerics...)))

	dup := []Categorical{
		{Prefix: "a", Values: []string{"b_c"}},
		{Prefix: "a_b", Values: []string{"c"}},
	}
	assert.Error(t, checkCollisions(dup, nil))

	shadow := []Categorical{
		{Prefix: "term", Values: []string{"x"}},
		{Prefix: "term_length", Values: []string{"y"}},
	}
	assert.Error(t, checkCollisions(shadow, nil))

	scalar := []Categorical{{Prefix: "loan", Values: []string{"amount"}}}
	assert.Error(t, checkCollisions(scalar, []string{"loan_amount"}))
}
