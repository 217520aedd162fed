package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Dataset     *model.Dataset
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every CSV partition under path.
// Partitions are parsed by a bounded worker pool and concatenated in path order.
func Load(path string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.Scan(path)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{TotalFiles: len(files)}
	parts := make([]partition, 0, len(files))
	for i, pr := range parseAll(files, 0, len(files), progressFn) {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		parts = append(parts, partition{path: files[i].Path, loans: pr.Loans, columns: pr.Columns})
	}

	if result.ParsedFiles == 0 {
		return nil, fmt.Errorf("no readable partitions under %s", path)
	}
	result.Dataset = assemble(parts)
	return result, nil
}

// partition is one file's parsed rows awaiting assembly.
type partition struct {
	path    string
	loans   []model.Loan
	columns []string
}

// parseAll parses files with a bounded worker pool. Results are indexed like
// files. offset is added to the progress count for files already handled.
func parseAll(files []source.DiscoveredFile, offset, total int, progressFn ProgressFunc) []source.ParseResult {
	results := make([]source.ParseResult, len(files))
	if len(files) == 0 {
		return results
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	for i := range files {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	var processed atomic.Int64

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+offset, total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}

// assemble concatenates partitions (already in path order) into one dataset.
// The dataset's columns are the union of every partition's header.
func assemble(parts []partition) *model.Dataset {
	n := 0
	for _, p := range parts {
		n += len(p.loans)
	}
	loans := make([]model.Loan, 0, n)
	var columns []string
	seen := make(map[string]struct{})
	for _, p := range parts {
		loans = append(loans, p.loans...)
		for _, c := range p.columns {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				columns = append(columns, c)
			}
		}
	}
	return model.NewDataset(loans, columns)
}
