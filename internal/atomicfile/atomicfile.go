// Package atomicfile provides crash-safe file writes via the
// write-temp-then-rename idiom, shared by every on-disk store.
package atomicfile

import (
	"os"
)

// Write writes data to path atomically: it writes to "path.tmp" first and
// renames it into place. A crash mid-write leaves the original file (if
// any) untouched; a crash mid-rename leaves either the old or new content,
// never a partial one.
func Write(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
