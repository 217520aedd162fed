package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanlens/loanlens/internal/model"
)

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, Validate(model.DefaultApplicant()))
	require.NoError(t, Validate(rentApplicant()))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*model.Applicant)
		field string
	}{
		{"home ownership", func(a *model.Applicant) { a.HomeOwnership = "NONE" }, "HomeOwnership"},
		{"grade", func(a *model.Applicant) { a.Grade = "H" }, "Grade"},
		{"term", func(a *model.Applicant) { a.Term = "48 months" }, "Term"},
		{"income low", func(a *model.Applicant) { a.AnnualIncome = 5000 }, "AnnualIncome"},
		{"amount high", func(a *model.Applicant) { a.LoanAmount = 250000 }, "LoanAmount"},
		{"dti", func(a *model.Applicant) { a.DTI = 51 }, "DTI"},
		{"employment", func(a *model.Applicant) { a.EmploymentLength = -1 }, "EmploymentLength"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := model.DefaultApplicant()
			tt.edit(&a)

			err := Validate(a)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_CatalogueMatchesTags(t *testing.T) {
	// Every catalogue value must pass validation so the form can offer it.
	for _, cat := range Categoricals {
		for _, v := range cat.Values {
			a := model.DefaultApplicant()
			switch cat.Prefix {
			case HomeOwnership.Prefix:
				a.HomeOwnership = v
			case IncomeCategory.Prefix:
				a.IncomeCategory = v
			case Term.Prefix:
				a.Term = v
			case Purpose.Prefix:
				a.Purpose = v
			case InterestPayments.Prefix:
				a.InterestPayments = v
			}
			assert.NoError(t, Validate(a), "%s=%s", cat.Prefix, v)
		}
	}
	for _, g := range Grades {
		a := model.DefaultApplicant()
		a.Grade = g
		assert.NoError(t, Validate(a), "grade=%s", g)
	}
}

func TestValidateField_OnlyChecksNamedField(t *testing.T) {
	a := model.DefaultApplicant()
	a.Grade = "Z"
	a.DTI = 99

	require.NoError(t, ValidateField(a, "LoanAmount"))

	err := ValidateField(a, "DTI")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "DTI", verr.Fields[0].Field)
	assert.Equal(t, "lte", verr.Fields[0].Rule)
}
