package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanlens/loanlens/internal/model"
)

var allColumns = []string{
	model.ColID, model.ColIssueDate, model.ColIssueWeekday, model.ColLoanAmount,
	model.ColInterestRate, model.ColTerm, model.ColPurpose, model.ColLoanCondition,
	model.ColGrade,
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleDataset() *model.Dataset {
	loans := []model.Loan{
		{ID: "1", IssueDate: day(2014, 1, 6), IssueWeekday: "Monday", LoanAmount: 1000, InterestRate: 10, Term: "36 months", Purpose: "credit_card", LoanCondition: "Good Loan", Grade: "B"},
		{ID: "2", IssueDate: day(2014, 1, 6), IssueWeekday: "Monday", LoanAmount: 3000, InterestRate: 14, Term: "60 months", Purpose: "credit_card", LoanCondition: "Bad Loan", Grade: "A"},
		{ID: "3", IssueDate: day(2014, 1, 8), IssueWeekday: "Wednesday", LoanAmount: 2000, InterestRate: 12, Term: "36 months", Purpose: "other", LoanCondition: "Good Loan", Grade: "B"},
		{ID: "4", IssueDate: day(2014, 1, 5), IssueWeekday: "Sunday", LoanAmount: 4000, InterestRate: 16, Term: "36 months", Purpose: "credit_card", LoanCondition: "Bad Loan", Grade: "G"},
	}
	return model.NewDataset(loans, allColumns)
}

func TestSummary(t *testing.T) {
	s, err := Summary(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, 4, s.TotalLoans)
	assert.Equal(t, 10000.0, s.TotalAmount)
	assert.Equal(t, 2500.0, s.AverageAmount)
	assert.Equal(t, 13.0, s.AverageInterestRate)
}

func TestSummary_Empty(t *testing.T) {
	s, err := Summary(model.NewDataset(nil, allColumns))
	require.NoError(t, err)
	assert.Equal(t, model.SummaryStats{}, s)
}

func TestCountByDate_ChronologicalNoFill(t *testing.T) {
	points, err := CountByDate(sampleDataset())
	require.NoError(t, err)
	require.Len(t, points, 3, "Jan 7 has no loans and must be absent")
	assert.Equal(t, day(2014, 1, 5), points[0].Date)
	assert.Equal(t, day(2014, 1, 6), points[1].Date)
	assert.Equal(t, 2.0, points[1].Value)
	assert.Equal(t, day(2014, 1, 8), points[2].Date)
}

func TestSumAmountByDate(t *testing.T) {
	points, err := SumAmountByDate(sampleDataset())
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 4000.0, points[0].Value)
	assert.Equal(t, 4000.0, points[1].Value)
	assert.Equal(t, 2000.0, points[2].Value)
}

func TestCountByWeekday_CalendarOrder(t *testing.T) {
	counts, err := CountByWeekday(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, []model.CategoryCount{
		{Key: "Monday", Count: 2},
		{Key: "Wednesday", Count: 1},
		{Key: "Sunday", Count: 1},
	}, counts)
}

func TestCountBy_SumsToTotal(t *testing.T) {
	d := sampleDataset()
	for _, col := range []string{model.ColGrade, model.ColTerm, model.ColPurpose, model.ColLoanCondition} {
		counts, err := CountBy(d, col, ByKey)
		require.NoError(t, err)
		total := 0
		seen := map[string]bool{}
		for _, c := range counts {
			assert.False(t, seen[c.Key], "duplicate group %s", c.Key)
			seen[c.Key] = true
			total += c.Count
		}
		assert.Equal(t, d.Len(), total, col)
	}
}

func TestCountBy_Orders(t *testing.T) {
	d := sampleDataset()

	grades, err := CountBy(d, model.ColGrade, ByKey)
	require.NoError(t, err)
	assert.Equal(t, []model.CategoryCount{{Key: "A", Count: 1}, {Key: "B", Count: 2}, {Key: "G", Count: 1}}, grades)

	conds, err := CountBy(d, model.ColLoanCondition, ByCountDesc)
	require.NoError(t, err)
	// Tie at 2 each breaks by key.
	assert.Equal(t, []model.CategoryCount{{Key: "Bad Loan", Count: 2}, {Key: "Good Loan", Count: 2}}, conds)

	purposes, err := CountBy(d, model.ColPurpose, ByCountDesc)
	require.NoError(t, err)
	assert.Equal(t, "credit_card", purposes[0].Key)
}

func TestCountBy_SingleGroup(t *testing.T) {
	d := model.NewDataset([]model.Loan{{Grade: "C"}, {Grade: "C"}}, []string{model.ColGrade})
	counts, err := CountBy(d, model.ColGrade, ByKey)
	require.NoError(t, err)
	assert.Equal(t, []model.CategoryCount{{Key: "C", Count: 2}}, counts)
}

func TestCountBy_Errors(t *testing.T) {
	d := model.NewDataset(nil, []string{model.ColID, model.ColLoanAmount})

	_, err := CountBy(d, model.ColGrade, ByKey)
	var missing *model.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, model.ColGrade, missing.Column)

	_, err = CountBy(d, model.ColLoanAmount, ByKey)
	assert.Error(t, err)
}

func TestMissingColumnSurfacesOnUse(t *testing.T) {
	d := model.NewDataset([]model.Loan{{ID: "1"}}, []string{model.ColID, model.ColIssueDate})
	_, err := CountByDate(d)
	assert.NoError(t, err)

	_, err = Summary(d)
	var missing *model.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, model.ColLoanAmount, missing.Column)
}

func TestFilterByCondition(t *testing.T) {
	d := sampleDataset()
	bad, err := FilterByCondition(d, "Bad Loan")
	require.NoError(t, err)
	require.Equal(t, 2, bad.Len())
	for _, l := range bad.Loans {
		assert.Equal(t, "Bad Loan", l.LoanCondition)
	}
	assert.True(t, bad.Has(model.ColGrade))

	none, err := FilterByCondition(d, "Unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, none.Len())
}

func TestConditionValues_FirstSeen(t *testing.T) {
	vals, err := ConditionValues(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, []string{"Good Loan", "Bad Loan"}, vals)
}

func TestTermValues(t *testing.T) {
	assert.Equal(t, []string{"36 months", "60 months"}, TermValues(sampleDataset()))
}

func TestHistogram(t *testing.T) {
	bins, err := Histogram(sampleDataset(), 3)
	require.NoError(t, err)
	require.Len(t, bins, 3)

	assert.Equal(t, 1000.0, bins[0].Lower)
	assert.Equal(t, 4000.0, bins[2].Upper)

	total := 0
	for _, b := range bins {
		byTerm := 0
		for _, n := range b.ByTerm {
			byTerm += n
		}
		assert.Equal(t, b.Count, byTerm)
		total += b.Count
	}
	assert.Equal(t, 4, total)
	assert.Equal(t, 2, bins[2].Count, "max lands in the last bin")
	assert.Equal(t, 1, bins[2].ByTerm["36 months"])
	assert.Equal(t, 1, bins[2].ByTerm["60 months"])
}

func TestHistogram_SingleValue(t *testing.T) {
	d := model.NewDataset([]model.Loan{{LoanAmount: 500, Term: "36 months"}}, allColumns)
	bins, err := Histogram(d, DefaultBins)
	require.NoError(t, err)
	require.Len(t, bins, DefaultBins)
	assert.Equal(t, 1, bins[0].Count)
}

func TestHistogram_SkipsNonFinite(t *testing.T) {
	d := model.NewDataset([]model.Loan{
		{LoanAmount: 1000, Term: "36 months"},
		{LoanAmount: math.NaN(), Term: "36 months"},
		{LoanAmount: math.Inf(1), Term: "60 months"},
		{LoanAmount: 5000, Term: "60 months"},
	}, allColumns)

	var bins []model.HistogramBin
	require.NotPanics(t, func() {
		var err error
		bins, err = Histogram(d, DefaultBins)
		require.NoError(t, err)
	})
	require.Len(t, bins, DefaultBins)
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 2, total)
	assert.Equal(t, 1000.0, bins[0].Lower)
	assert.Equal(t, 5000.0, bins[DefaultBins-1].Upper)

	onlyNaN := model.NewDataset([]model.Loan{{LoanAmount: math.NaN()}}, allColumns)
	bins, err := Histogram(onlyNaN, DefaultBins)
	require.NoError(t, err)
	assert.Empty(t, bins)
}

func TestHistogram_Empty(t *testing.T) {
	bins, err := Histogram(model.NewDataset(nil, allColumns), DefaultBins)
	require.NoError(t, err)
	assert.Empty(t, bins)
}

func TestBoxStats(t *testing.T) {
	boxes, err := BoxStats(sampleDataset())
	require.NoError(t, err)
	require.Len(t, boxes, 3)

	b := boxes[0]
	assert.Equal(t, "credit_card", b.Purpose)
	assert.Equal(t, "36 months", b.Term)
	assert.Equal(t, 2, b.Count)
	assert.Equal(t, 1000.0, b.Min)
	assert.Equal(t, 4000.0, b.Max)
	assert.Equal(t, 2500.0, b.Median)
	assert.Equal(t, 1750.0, b.Q1)
	assert.Equal(t, 3250.0, b.Q3)
	assert.Equal(t, 2500.0, b.Mean)

	assert.Equal(t, "60 months", boxes[1].Term)
	assert.Equal(t, "other", boxes[2].Purpose)
}

func TestQuantile(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, quantile(0, xs))
	assert.Equal(t, 2.0, quantile(0.25, xs))
	assert.Equal(t, 3.0, quantile(0.5, xs))
	assert.Equal(t, 5.0, quantile(1, xs))
	assert.Equal(t, 7.0, quantile(0.5, []float64{7}))
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("9 months", "36 months"))
	assert.True(t, naturalLess("36 months", "60 months"))
	assert.True(t, naturalLess("A", "B"))
	assert.True(t, naturalLess("", "A"))
	assert.False(t, naturalLess("B", "B"))
	assert.True(t, naturalLess("item2", "item10"))
}
