package tui

import (
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/pipeline"
)

// dashboard holds every aggregate the tabs render. Each section keeps its
// own error so a missing column only blanks the charts that need it.
type dashboard struct {
	summary    model.SummaryStats
	summaryErr error

	byDate      []model.DatePoint
	amountDate  []model.DatePoint
	byWeekday   []model.CategoryCount
	timelineErr error
	weekdayErr  error

	conditions   []model.CategoryCount
	grades       []model.CategoryCount
	conditionErr error
	gradeErr     error

	// Financial page, recomputed when the selected condition changes.
	conditionValues []string
	selected        int
	financial       financialView
}

type financialView struct {
	condition string
	loans     int
	terms     []string
	bins      []model.HistogramBin
	boxes     []model.BoxStats
	err       error
}

func newDashboard(d *model.Dataset) dashboard {
	var db dashboard
	db.summary, db.summaryErr = pipeline.Summary(d)

	db.byDate, db.timelineErr = pipeline.CountByDate(d)
	if db.timelineErr == nil {
		db.amountDate, db.timelineErr = pipeline.SumAmountByDate(d)
	}
	db.byWeekday, db.weekdayErr = pipeline.CountByWeekday(d)

	db.conditions, db.conditionErr = pipeline.CountBy(d, model.ColLoanCondition, pipeline.ByCountDesc)
	db.grades, db.gradeErr = pipeline.CountBy(d, model.ColGrade, pipeline.ByKey)

	values, err := pipeline.ConditionValues(d)
	if err != nil {
		db.financial.err = err
		return db
	}
	db.conditionValues = values
	db.selectCondition(d, 0)
	return db
}

// selectCondition recomputes the financial page for conditionValues[idx].
func (db *dashboard) selectCondition(d *model.Dataset, idx int) {
	if len(db.conditionValues) == 0 {
		return
	}
	n := len(db.conditionValues)
	db.selected = ((idx % n) + n) % n

	fv := financialView{condition: db.conditionValues[db.selected]}
	filtered, err := pipeline.FilterByCondition(d, fv.condition)
	if err != nil {
		fv.err = err
		db.financial = fv
		return
	}
	fv.loans = filtered.Len()
	fv.terms = pipeline.TermValues(filtered)
	fv.bins, fv.err = pipeline.Histogram(filtered, pipeline.DefaultBins)
	if fv.err == nil {
		fv.boxes, fv.err = pipeline.BoxStats(filtered)
	}
	db.financial = fv
}
