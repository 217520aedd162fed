// Package pipeline orchestrates dataset loading, caching, and aggregation.
package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
	"unicode"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/loanlens/loanlens/internal/model"
)

// Order selects how CountBy sorts its groups.
type Order int

const (
	// ByKey sorts groups by their value in natural order.
	ByKey Order = iota
	// ByCountDesc sorts the largest group first; ties fall back to ByKey.
	ByCountDesc
)

// DefaultBins is the loan amount histogram resolution.
const DefaultBins = 30

// Weekdays in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Summary computes the overview metrics.
func Summary(d *model.Dataset) (model.SummaryStats, error) {
	if err := d.Require(model.ColLoanAmount, model.ColInterestRate); err != nil {
		return model.SummaryStats{}, err
	}
	stats := model.SummaryStats{TotalLoans: d.Len()}
	if d.Len() == 0 {
		return stats, nil
	}
	var rate float64
	for _, l := range d.Loans {
		stats.TotalAmount += l.LoanAmount
		rate += l.InterestRate
	}
	n := float64(d.Len())
	stats.AverageAmount = stats.TotalAmount / n
	stats.AverageInterestRate = rate / n
	return stats, nil
}

// CountByDate returns the number of loans issued per day, oldest first.
// Days without loans are absent.
func CountByDate(d *model.Dataset) ([]model.DatePoint, error) {
	if err := d.Require(model.ColIssueDate); err != nil {
		return nil, err
	}
	return byDate(d, func(model.Loan) float64 { return 1 }), nil
}

// SumAmountByDate returns the total loan amount issued per day, oldest first.
func SumAmountByDate(d *model.Dataset) ([]model.DatePoint, error) {
	if err := d.Require(model.ColIssueDate, model.ColLoanAmount); err != nil {
		return nil, err
	}
	return byDate(d, func(l model.Loan) float64 { return l.LoanAmount }), nil
}

func byDate(d *model.Dataset, value func(model.Loan) float64) []model.DatePoint {
	dayMap := make(map[time.Time]float64)
	for _, l := range d.Loans {
		if l.IssueDate.IsZero() {
			continue
		}
		y, m, day := l.IssueDate.Date()
		key := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
		dayMap[key] += value(l)
	}

	points := make([]model.DatePoint, 0, len(dayMap))
	for day, v := range dayMap {
		points = append(points, model.DatePoint{Date: day, Value: v})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// CountByWeekday counts loans per issue weekday, Monday first. Only observed
// weekdays appear; unrecognized labels sort after Sunday.
func CountByWeekday(d *model.Dataset) ([]model.CategoryCount, error) {
	counts, err := CountBy(d, model.ColIssueWeekday, ByKey)
	if err != nil {
		return nil, err
	}
	rank := make(map[string]int, len(Weekdays))
	for i, w := range Weekdays {
		rank[w] = i
	}
	sort.SliceStable(counts, func(i, j int) bool {
		ri, iok := rank[counts[i].Key]
		rj, jok := rank[counts[j].Key]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return false
	})
	return counts, nil
}

// CountBy counts loans per distinct value of a categorical column. Every
// observed value gets one row and the counts sum to d.Len().
func CountBy(d *model.Dataset, column string, order Order) ([]model.CategoryCount, error) {
	if err := d.Require(column); err != nil {
		return nil, err
	}
	if _, ok := (model.Loan{}).Field(column); !ok {
		return nil, fmt.Errorf("column %q is not categorical", column)
	}

	countMap := make(map[string]int)
	for _, l := range d.Loans {
		v, _ := l.Field(column)
		countMap[v]++
	}

	counts := make([]model.CategoryCount, 0, len(countMap))
	for k, n := range countMap {
		counts = append(counts, model.CategoryCount{Key: k, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if order == ByCountDesc && counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return naturalLess(counts[i].Key, counts[j].Key)
	})
	return counts, nil
}

// FilterByCondition returns the loans whose loan_condition equals condition.
func FilterByCondition(d *model.Dataset, condition string) (*model.Dataset, error) {
	if err := d.Require(model.ColLoanCondition); err != nil {
		return nil, err
	}
	var out []model.Loan
	for _, l := range d.Loans {
		if l.LoanCondition == condition {
			out = append(out, l)
		}
	}
	return &model.Dataset{Loans: out, Columns: d.Columns}, nil
}

// ConditionValues returns the distinct loan conditions in first-seen order.
func ConditionValues(d *model.Dataset) ([]string, error) {
	if err := d.Require(model.ColLoanCondition); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, l := range d.Loans {
		if _, ok := seen[l.LoanCondition]; ok {
			continue
		}
		seen[l.LoanCondition] = struct{}{}
		out = append(out, l.LoanCondition)
	}
	return out, nil
}

// TermValues returns the distinct terms in natural order.
func TermValues(d *model.Dataset) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range d.Loans {
		if _, ok := seen[l.Term]; !ok {
			seen[l.Term] = struct{}{}
			out = append(out, l.Term)
		}
	}
	sort.Slice(out, func(i, j int) bool { return naturalLess(out[i], out[j]) })
	return out
}

// Histogram buckets loan amounts into equal-width bins spanning the observed
// range, with per-term counts. The last bin includes the maximum.
func Histogram(d *model.Dataset, bins int) ([]model.HistogramBin, error) {
	if err := d.Require(model.ColLoanAmount, model.ColTerm); err != nil {
		return nil, err
	}
	if d.Len() == 0 {
		return nil, nil
	}
	if bins < 1 {
		bins = DefaultBins
	}

	// Non-finite amounts have no bin.
	loans := make([]model.Loan, 0, d.Len())
	amounts := make([]float64, 0, d.Len())
	for _, l := range d.Loans {
		if math.IsNaN(l.LoanAmount) || math.IsInf(l.LoanAmount, 0) {
			continue
		}
		loans = append(loans, l)
		amounts = append(amounts, l.LoanAmount)
	}
	if len(amounts) == 0 {
		return nil, nil
	}
	lo, hi := floats.Min(amounts), floats.Max(amounts)
	width := (hi - lo) / float64(bins)
	if width == 0 {
		width = 1
	}

	out := make([]model.HistogramBin, bins)
	for i := range out {
		out[i] = model.HistogramBin{
			Lower:  lo + float64(i)*width,
			Upper:  lo + float64(i+1)*width,
			ByTerm: make(map[string]int),
		}
	}
	for i, l := range loans {
		idx := int(math.Floor((amounts[i] - lo) / width))
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
		out[idx].ByTerm[l.Term]++
	}
	return out, nil
}

// BoxStats summarizes loan amounts per purpose and term, sorted by purpose
// then term.
func BoxStats(d *model.Dataset) ([]model.BoxStats, error) {
	if err := d.Require(model.ColLoanAmount, model.ColPurpose, model.ColTerm); err != nil {
		return nil, err
	}

	type groupKey struct{ purpose, term string }
	groups := make(map[groupKey][]float64)
	for _, l := range d.Loans {
		k := groupKey{l.Purpose, l.Term}
		groups[k] = append(groups[k], l.LoanAmount)
	}

	out := make([]model.BoxStats, 0, len(groups))
	for k, xs := range groups {
		sort.Float64s(xs)
		out = append(out, model.BoxStats{
			Purpose: k.purpose,
			Term:    k.term,
			Count:   len(xs),
			Min:     xs[0],
			Q1:      quantile(0.25, xs),
			Median:  quantile(0.5, xs),
			Q3:      quantile(0.75, xs),
			Max:     xs[len(xs)-1],
			Mean:    stat.Mean(xs, nil),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Purpose != out[j].Purpose {
			return naturalLess(out[i].Purpose, out[j].Purpose)
		}
		return naturalLess(out[i].Term, out[j].Term)
	})
	return out, nil
}

// quantile interpolates linearly between closest ranks over sorted xs, the
// method box plots use for quartiles.
func quantile(p float64, xs []float64) float64 {
	if len(xs) == 1 {
		return xs[0]
	}
	h := p * float64(len(xs)-1)
	lo := int(math.Floor(h))
	if lo >= len(xs)-1 {
		return xs[len(xs)-1]
	}
	return xs[lo] + (h-float64(lo))*(xs[lo+1]-xs[lo])
}

// naturalLess compares strings treating digit runs as numbers, so
// "9 months" sorts before "36 months".
func naturalLess(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		if unicode.IsDigit(ra[i]) && unicode.IsDigit(rb[j]) {
			si := i
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			sj := j
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}
			na, errA := strconv.Atoi(string(ra[si:i]))
			nb, errB := strconv.Atoi(string(rb[sj:j]))
			if errA == nil && errB == nil && na != nb {
				return na < nb
			}
			if sa, sb := string(ra[si:i]), string(rb[sj:j]); sa != sb {
				return sa < sb
			}
			continue
		}
		if ra[i] != rb[j] {
			return ra[i] < rb[j]
		}
		i++
		j++
	}
	return len(ra)-i < len(rb)-j
}
