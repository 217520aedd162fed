// Package store provides a SQLite-backed cache for parsed partitions and the
// prediction history.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loanlens/loanlens/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache is the local SQLite database.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a partition.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// Partition is one parsed CSV file as stored in the cache.
type Partition struct {
	FilePath    string
	Columns     []string
	Loans       []model.Loan
	ParseErrors int
}

// GetTrackedFiles returns file_path -> FileInfo for all cached partitions.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM partitions")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SavePartition replaces the cached rows for p.FilePath.
func (c *Cache) SavePartition(p Partition, mtimeNs, sizeBytes int64) error {
	cols, err := json.Marshal(p.Columns)
	if err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM partitions WHERE file_path = ?", p.FilePath); err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO partitions
		(file_path, columns, parse_errors, mtime_ns, size_bytes, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.FilePath, string(cols), p.ParseErrors, mtimeNs, sizeBytes,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO loans
		(file_path, row_num, id, issue_date, issue_weekday, loan_amount, interest_rate,
		 term, purpose, loan_condition, grade, employment_length, home_ownership,
		 income_category, annual_income, interest_payments, dti, total_payment, installment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, l := range p.Loans {
		_, err = stmt.Exec(
			p.FilePath, i, l.ID, formatDate(l.IssueDate), l.IssueWeekday, l.LoanAmount, l.InterestRate,
			l.Term, l.Purpose, l.LoanCondition, l.Grade, l.EmploymentLength, l.HomeOwnership,
			l.IncomeCategory, l.AnnualIncome, l.InterestPayments, l.DTI, l.TotalPayment, l.Installment,
		)
		if err != nil {
			return fmt.Errorf("caching row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadPartition reads one cached partition in original row order.
func (c *Cache) LoadPartition(filePath string) (Partition, error) {
	p := Partition{FilePath: filePath}

	var cols string
	err := c.db.QueryRow("SELECT columns, parse_errors FROM partitions WHERE file_path = ?", filePath).
		Scan(&cols, &p.ParseErrors)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(cols), &p.Columns); err != nil {
		return p, fmt.Errorf("decoding cached columns: %w", err)
	}

	rows, err := c.db.Query(`SELECT
		id, issue_date, issue_weekday, loan_amount, interest_rate,
		term, purpose, loan_condition, grade, employment_length, home_ownership,
		income_category, annual_income, interest_payments, dti, total_payment, installment
		FROM loans WHERE file_path = ? ORDER BY row_num`, filePath)
	if err != nil {
		return p, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var l model.Loan
		var issueDate string
		err := rows.Scan(
			&l.ID, &issueDate, &l.IssueWeekday, &l.LoanAmount, &l.InterestRate,
			&l.Term, &l.Purpose, &l.LoanCondition, &l.Grade, &l.EmploymentLength, &l.HomeOwnership,
			&l.IncomeCategory, &l.AnnualIncome, &l.InterestPayments, &l.DTI, &l.TotalPayment, &l.Installment,
		)
		if err != nil {
			return p, err
		}
		if issueDate != "" {
			l.IssueDate, _ = time.Parse(time.RFC3339Nano, issueDate)
		}
		p.Loans = append(p.Loans, l)
	}
	return p, rows.Err()
}

// DeletePartition removes a partition and its rows.
func (c *Cache) DeletePartition(filePath string) error {
	_, err := c.db.Exec("DELETE FROM partitions WHERE file_path = ?", filePath)
	return err
}

// PartitionCount returns the number of cached partitions.
func (c *Cache) PartitionCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM partitions").Scan(&count)
	return count, err
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	// Keep the offset so the calendar day survives the round trip.
	return t.Format(time.RFC3339Nano)
}
