// Package source discovers and parses loan dataset CSV partitions.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/loanlens/loanlens/internal/model"
)

// Accepted issue_date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseFile reads one CSV partition. Rows that fail to parse are counted
// and skipped.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	res := Parse(f)
	if res.Err != nil {
		res.Err = fmt.Errorf("%s: %w", df.Path, res.Err)
	}
	return res
}

// Parse reads a CSV stream whose first row is the header.
func Parse(r io.Reader) ParseResult {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{Err: fmt.Errorf("empty file, no header row")}
		}
		return ParseResult{Err: fmt.Errorf("reading header: %w", err)}
	}

	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		name := normalizeColumn(h)
		columns[i] = name
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var (
		loans       []model.Loan
		parseErrors int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				parseErrors++
				continue
			}
			return ParseResult{Err: err}
		}
		loan, err := parseRow(row, index)
		if err != nil {
			parseErrors++
			continue
		}
		loans = append(loans, loan)
	}

	return ParseResult{Loans: loans, Columns: withDerived(columns), ParseErrors: parseErrors}
}

func normalizeColumn(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

// rowReader pulls typed values out of one CSV row, remembering the first
// conversion failure.
type rowReader struct {
	row   []string
	index map[string]int
	err   error
}

func (r *rowReader) str(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func (r *rowReader) float(col string) float64 {
	s := r.str(col)
	if s == "" || r.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.err = fmt.Errorf("column %s: %w", col, err)
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		r.err = fmt.Errorf("column %s: non-finite value %q", col, s)
		return 0
	}
	return f
}

func (r *rowReader) date(col string) time.Time {
	s := r.str(col)
	if s == "" || r.err != nil {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	r.err = fmt.Errorf("column %s: unrecognized date %q", col, s)
	return time.Time{}
}

func parseRow(row []string, index map[string]int) (model.Loan, error) {
	r := &rowReader{row: row, index: index}
	l := model.Loan{
		ID:               r.str(model.ColID),
		IssueDate:        r.date(model.ColIssueDate),
		IssueWeekday:     r.str(model.ColIssueWeekday),
		LoanAmount:       r.float(model.ColLoanAmount),
		InterestRate:     r.float(model.ColInterestRate),
		Term:             r.str(model.ColTerm),
		Purpose:          r.str(model.ColPurpose),
		LoanCondition:    r.str(model.ColLoanCondition),
		Grade:            r.str(model.ColGrade),
		EmploymentLength: r.float(model.ColEmploymentLength),
		HomeOwnership:    r.str(model.ColHomeOwnership),
		IncomeCategory:   r.str(model.ColIncomeCategory),
		AnnualIncome:     r.float(model.ColAnnualIncome),
		InterestPayments: r.str(model.ColInterestPayments),
		DTI:              r.float(model.ColDTI),
		TotalPayment:     r.float(model.ColTotalPayment),
		Installment:      r.float(model.ColInstallment),
	}
	if r.err != nil {
		return model.Loan{}, r.err
	}
	if l.IssueWeekday == "" && !l.IssueDate.IsZero() {
		l.IssueWeekday = l.IssueDate.Weekday().String()
	}
	return l, nil
}

// withDerived adds issue_weekday to a header that has issue_date but no
// weekday, since parseRow derives it.
func withDerived(header []string) []string {
	hasDate, hasWeekday := false, false
	for _, c := range header {
		switch c {
		case model.ColIssueDate:
			hasDate = true
		case model.ColIssueWeekday:
			hasWeekday = true
		}
	}
	if hasDate && !hasWeekday {
		return append(append([]string(nil), header...), model.ColIssueWeekday)
	}
	return header
}
