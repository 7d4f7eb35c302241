package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ProductScanResult holds the directories found complete for one action
// during one scan invocation — this is exactly the payload a staging file
// carries.
type ProductScanResult struct {
	Action   string
	Complete []string
}

// ScanProducts checks, for every directory in dirs (bare names relative to
// workspacePath), whether all of products exist as regular files under it.
// Directories where every product is present are returned in Complete
// (unordered, as the same bare names passed in). Per-file stat errors are
// swallowed (treated as "product missing"); onProgress, if non-nil, is
// called after each directory is checked.
func (p *Pool) ScanProducts(ctx context.Context, action, workspacePath string, products []string, dirs []string, onProgress func(done, total int)) (*ProductScanResult, error) {
	if len(products) == 0 {
		// No products declared: nothing can be marked complete by scanning.
		return &ProductScanResult{Action: action}, nil
	}

	var mu sync.Mutex
	var complete []string
	var done int32

	err := p.run(ctx, len(dirs), func(ctx context.Context, i int) error {
		dir := dirs[i]
		ok := allProductsExist(filepath.Join(workspacePath, dir), products)
		mu.Lock()
		if ok {
			complete = append(complete, dir)
		}
		done++
		d := done
		mu.Unlock()
		if onProgress != nil {
			onProgress(int(d), len(dirs))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning products for action %q: %w", action, err)
	}

	return &ProductScanResult{Action: action, Complete: complete}, nil
}

func allProductsExist(dir string, products []string) bool {
	for _, product := range products {
		info, err := os.Stat(filepath.Join(dir, product))
		if err != nil || !info.Mode().IsRegular() {
			return false
		}
	}
	return true
}
