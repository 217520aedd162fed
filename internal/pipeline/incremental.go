package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loanlens/loanlens/internal/source"
	"github.com/loanlens/loanlens/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits   int
	Reparsed    int
	CacheWrites int
	WriteErrors int
	Pruned      int
}

// LoadWithCache discovers partitions, loads unchanged ones from the cache,
// reparses the rest, and stores them back. Cache entries under a scanned
// directory whose file is gone are pruned; entries outside it belong to
// other datasets and are left alone.
func LoadWithCache(path string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.Scan(path)
	if err != nil {
		return nil, err
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(files)}}
	result.Pruned = prune(path, files, tracked, cache)
	parts := make([]partition, len(files))
	ok := make([]bool, len(files))

	// Diff: cached and unchanged partitions load from SQLite.
	var reparse []int
	for i, f := range files {
		cached, hit := tracked[f.Path]
		if hit && cached.MtimeNs == f.ModTime.UnixNano() && cached.SizeBytes == f.Size {
			p, err := cache.LoadPartition(f.Path)
			if err == nil {
				parts[i] = partition{path: f.Path, loans: p.Loans, columns: p.Columns}
				ok[i] = true
				result.CacheHits++
				result.ParsedFiles++
				result.ParseErrors += p.ParseErrors
				continue
			}
		}
		reparse = append(reparse, i)
	}
	result.Reparsed = len(reparse)

	if progressFn != nil && result.CacheHits > 0 {
		progressFn(result.CacheHits, result.TotalFiles)
	}

	toParse := make([]source.DiscoveredFile, len(reparse))
	for j, i := range reparse {
		toParse[j] = files[i]
	}
	for j, pr := range parseAll(toParse, result.CacheHits, result.TotalFiles, progressFn) {
		i := reparse[j]
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		parts[i] = partition{path: files[i].Path, loans: pr.Loans, columns: pr.Columns}
		ok[i] = true

		err := cache.SavePartition(store.Partition{
			FilePath:    files[i].Path,
			Columns:     pr.Columns,
			Loans:       pr.Loans,
			ParseErrors: pr.ParseErrors,
		}, files[i].ModTime.UnixNano(), files[i].Size)
		if err != nil {
			result.WriteErrors++
		} else {
			result.CacheWrites++
		}
	}

	if result.ParsedFiles == 0 {
		return nil, fmt.Errorf("no readable partitions under %s", path)
	}

	loaded := make([]partition, 0, len(parts))
	for i, p := range parts {
		if ok[i] {
			loaded = append(loaded, p)
		}
	}
	result.Dataset = assemble(loaded)
	return result, nil
}

// prune deletes cached partitions that lived under the scanned directory but
// were not discovered this time. A single-file dataset prunes nothing.
func prune(path string, files []source.DiscoveredFile, tracked map[string]store.FileInfo, cache *store.Cache) int {
	root, err := filepath.Abs(path)
	if err != nil {
		return 0
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return 0
	}
	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f.Path] = struct{}{}
	}
	prefix := root + string(filepath.Separator)
	n := 0
	for p := range tracked {
		if _, ok := present[p]; ok || !strings.HasPrefix(p, prefix) {
			continue
		}
		if cache.DeletePartition(p) == nil {
			n++
		}
	}
	return n
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "loanlens")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "loanlens")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "loanlens.db")
}
