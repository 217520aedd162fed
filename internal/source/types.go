package source

import (
	"time"

	"github.com/loanlens/loanlens/internal/model"
)

// DiscoveredFile is one CSV partition found by Scan.
type DiscoveredFile struct {
	Path    string
	Name    string // path relative to the scan root
	Size    int64
	ModTime time.Time
}

// ParseResult holds the output of parsing one partition.
type ParseResult struct {
	Loans       []model.Loan
	Columns     []string
	ParseErrors int
	Err         error
}
