package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanlens/loanlens/internal/model"
)

// writeCSV creates a temp CSV file and returns a DiscoveredFile for it.
func writeCSV(t *testing.T, dir, name string, lines ...string) DiscoveredFile {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return DiscoveredFile{Path: path, Name: name}
}

const header = "id,issue_date,issue_weekday,loan_amount,interest_rate,term,purpose,loan_condition,grade,employment_length,home_ownership,income_category,annual_income,interest_payments,dti"

func TestParseFile_Rows(t *testing.T) {
	df := writeCSV(t, t.TempDir(), "loans.csv",
		header,
		"1,2014-01-06,Monday,15000,13.5,36 months,debt_consolidation,Good Loan,B,3,RENT,Low,50000,Low,15.2",
		"2,2014-01-07,Tuesday,8000,9.1,60 months,credit_card,Bad Loan,A,10,OWN,Medium,90000,High,8",
	)

	res := ParseFile(df)
	require.NoError(t, res.Err)
	require.Len(t, res.Loans, 2)
	assert.Equal(t, 0, res.ParseErrors)

	l := res.Loans[0]
	assert.Equal(t, "1", l.ID)
	assert.Equal(t, time.Date(2014, 1, 6, 0, 0, 0, 0, time.UTC), l.IssueDate)
	assert.Equal(t, "Monday", l.IssueWeekday)
	assert.Equal(t, 15000.0, l.LoanAmount)
	assert.Equal(t, 13.5, l.InterestRate)
	assert.Equal(t, "36 months", l.Term)
	assert.Equal(t, "Good Loan", l.LoanCondition)
	assert.Equal(t, "B", l.Grade)
	assert.Equal(t, 15.2, l.DTI)
	assert.Contains(t, res.Columns, model.ColDTI)
}

func TestParse_BadRowsCounted(t *testing.T) {
	res := Parse(strings.NewReader(strings.Join([]string{
		"id,issue_date,loan_amount",
		"1,2014-01-06,1000",
		"2,not-a-date,1000",
		"3,2014-01-06,lots",
		`4,2014-01-06,"unterminated`,
	}, "\n")))
	require.NoError(t, res.Err)
	assert.Len(t, res.Loans, 1)
	assert.Equal(t, 3, res.ParseErrors)
}

func TestParse_DateLayouts(t *testing.T) {
	res := Parse(strings.NewReader(strings.Join([]string{
		"id,issue_date",
		"1,2015-03-02",
		"2,2015-03-02T00:00:00Z",
		"3,2015-03-02 00:00:00",
	}, "\n")))
	require.NoError(t, res.Err)
	require.Len(t, res.Loans, 3)
	for _, l := range res.Loans {
		assert.Equal(t, 2015, l.IssueDate.Year())
		assert.Equal(t, time.March, l.IssueDate.Month())
	}
}

func TestParse_DerivesWeekday(t *testing.T) {
	res := Parse(strings.NewReader("\ufeffid,issue_date,grade\n7,2015-03-02,C\n8,2015-03-08,A\n"))
	require.NoError(t, res.Err)
	require.Len(t, res.Loans, 2)
	assert.Equal(t, "7", res.Loans[0].ID)
	assert.Equal(t, "Monday", res.Loans[0].IssueWeekday)
	assert.Equal(t, "Sunday", res.Loans[1].IssueWeekday)
	assert.Contains(t, res.Columns, model.ColIssueWeekday)
}

func TestParse_KeepsWeekdayColumn(t *testing.T) {
	res := Parse(strings.NewReader("id,issue_date,issue_weekday\n1,2015-03-02,Tuesday\n"))
	require.NoError(t, res.Err)
	require.Len(t, res.Loans, 1)
	assert.Equal(t, "Tuesday", res.Loans[0].IssueWeekday)
	assert.Equal(t, []string{"id", "issue_date", "issue_weekday"}, res.Columns)
}

func TestParse_NoDateNoWeekday(t *testing.T) {
	res := Parse(strings.NewReader("\ufeffid,grade\n7,C\n"))
	require.NoError(t, res.Err)
	require.Len(t, res.Loans, 1)
	assert.Empty(t, res.Loans[0].IssueWeekday)
	assert.Equal(t, []string{"id", "grade"}, res.Columns)
}

func TestParse_RejectsNonFinite(t *testing.T) {
	res := Parse(strings.NewReader(strings.Join([]string{
		"id,loan_amount,term",
		"1,1000,36 months",
		"2,NaN,36 months",
		"3,+Inf,60 months",
		"4,-inf,60 months",
		"5,5000,60 months",
	}, "\n")))
	require.NoError(t, res.Err)
	require.Len(t, res.Loans, 2)
	assert.Equal(t, 3, res.ParseErrors)
	assert.Equal(t, "1", res.Loans[0].ID)
	assert.Equal(t, "5", res.Loans[1].ID)
}

func TestParse_Empty(t *testing.T) {
	res := Parse(strings.NewReader(""))
	assert.Error(t, res.Err)
}

func TestParseFile_Missing(t *testing.T) {
	res := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "missing.csv")})
	assert.Error(t, res.Err)
}

func TestScan_File(t *testing.T) {
	df := writeCSV(t, t.TempDir(), "one.csv", header)
	files, err := Scan(df.Path)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "one.csv", files[0].Name)
	assert.Positive(t, files[0].Size)
}

func TestScan_Directory(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "2015/b.csv", header)
	writeCSV(t, dir, "2014/a.csv", header)
	writeCSV(t, dir, "notes.txt", "ignore")
	writeCSV(t, dir, ".hidden/c.csv", header)

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join("2014", "a.csv"), files[0].Name)
	assert.Equal(t, filepath.Join("2015", "b.csv"), files[1].Name)
}

func TestScan_Errors(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)

	_, err = Scan(t.TempDir())
	assert.Error(t, err)
}
