package value

import (
	"context"
	"os"

	"github.com/jorge-barreto/row/internal/scan"
)

// Refresh enumerates the workspace's immediate child directories, drops
// cached values for directories that disappeared, and reads+parses the
// value file (in parallel, via pool) for directories newly discovered
// since the last refresh. Directories whose value is already cached are
// left untouched: a directory present before and after a refresh whose
// value file is unchanged retains the same cached value.
func (s *Store) Refresh(ctx context.Context, workspacePath, valueFile string, pool *scan.Pool, onProgress func(done, total int)) error {
	entries, err := os.ReadDir(workspacePath)
	if err != nil {
		return err
	}

	current := make(map[string]bool, len(entries))
	var added []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		current[e.Name()] = true
		if _, ok := s.Value(e.Name()); !ok {
			added = append(added, e.Name())
		}
	}

	for _, d := range s.Directories() {
		if !current[d] {
			s.Drop(d)
		}
	}

	if len(added) == 0 {
		return nil
	}

	addedPaths := make([]string, len(added))
	for i, name := range added {
		addedPaths[i] = workspacePath + string(os.PathSeparator) + name
	}

	result, err := pool.ScanValues(ctx, valueFile, addedPaths, onProgress)
	if err != nil {
		return err
	}
	for i, name := range added {
		s.Set(name, result.Values[addedPaths[i]])
	}
	return nil
}
