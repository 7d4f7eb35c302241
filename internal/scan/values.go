package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jorge-barreto/row/internal/rowerr"
)

// ValueScanResult maps directory -> decoded JSON value for one refresh's
// worth of newly discovered directories.
type ValueScanResult struct {
	Values map[string]any
	Errors []error // per-file read/parse errors; value.Refresh does not log or return them
}

// ScanValues reads and parses valueFile under each directory in dirs. A
// missing value file decodes to a JSON null. A present-but-unparseable
// file is recorded in Errors (as rowerr.InvalidValueFile) and is skipped,
// not fatal, unless the workspace root itself cannot be enumerated by the
// caller.
func (p *Pool) ScanValues(ctx context.Context, valueFile string, dirs []string, onProgress func(done, total int)) (*ValueScanResult, error) {
	result := &ValueScanResult{Values: make(map[string]any, len(dirs))}
	if valueFile == "" {
		for _, d := range dirs {
			result.Values[d] = nil
		}
		return result, nil
	}

	var mu sync.Mutex
	var doneCount int

	err := p.run(ctx, len(dirs), func(ctx context.Context, i int) error {
		dir := dirs[i]
		path := filepath.Join(dir, valueFile)
		v, readErr := readValueFile(path)

		mu.Lock()
		if readErr != nil {
			result.Errors = append(result.Errors, readErr)
		} else {
			result.Values[dir] = v
		}
		doneCount++
		d := doneCount
		mu.Unlock()
		if onProgress != nil {
			onProgress(d, len(dirs))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning values: %w", err)
	}
	return result, nil
}

func readValueFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &rowerr.InvalidValueFile{Path: path, Cause: err}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &rowerr.InvalidValueFile{Path: path, Cause: err}
	}
	return v, nil
}
