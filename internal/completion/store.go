// Package completion tracks, for every (action, directory) pair, whether
// the action's products have been observed present on disk. Product scans
// run concurrently out of process from whatever holds the project lock, so
// results are staged as small per-scan files and merged into the main
// store under lock — never written directly by a scanning goroutine.
package completion

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/jorge-barreto/row/internal/atomicfile"
	"github.com/jorge-barreto/row/internal/rowerr"
)

const (
	mainFileName    = "completed.cbor"
	stagingDirName  = "completed"
	stagingFileMode = 0644
)

// Record is the unit persisted to a staging file by one scan: the set of
// directories found complete for one action.
type Record struct {
	Action      string   `cbor:"action"`
	Directories []string `cbor:"directories"`
}

// Store holds the merged completion state for the whole workspace:
// action name -> set of complete directories.
type Store struct {
	mu       sync.RWMutex
	stateDir string
	complete map[string]map[string]bool
}

func mainPath(stateDir string) string   { return filepath.Join(stateDir, mainFileName) }
func stagingDir(stateDir string) string { return filepath.Join(stateDir, stagingDirName) }

// Open loads the main completion file, creating an empty store if it does
// not yet exist. It does not merge pending staging files — call Merge for
// that once the caller holds the project lock.
func Open(stateDir string) (*Store, error) {
	s := &Store{stateDir: stateDir, complete: make(map[string]map[string]bool)}

	data, err := os.ReadFile(mainPath(stateDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, &rowerr.FilesystemError{Op: "read", Path: mainPath(stateDir), Cause: err}
	}

	var raw map[string][]string
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, &rowerr.StaleCacheError{Path: mainPath(stateDir), Cause: err}
	}
	for action, dirs := range raw {
		set := make(map[string]bool, len(dirs))
		for _, d := range dirs {
			set[d] = true
		}
		s.complete[action] = set
	}
	return s, nil
}

// IsComplete reports whether directory has been observed complete for
// action.
func (s *Store) IsComplete(action, directory string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.complete[action][directory]
}

// CompleteDirectories returns the directories recorded complete for
// action, unordered.
func (s *Store) CompleteDirectories(action string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.complete[action]
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	return out
}

// AddStaging writes rec to a new uniquely named file in the staging
// directory. Multiple scanners can call this concurrently without
// coordination — each gets its own file, and nothing here touches the
// main file.
func AddStaging(stateDir string, rec Record) error {
	dir := stagingDir(stateDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &rowerr.FilesystemError{Op: "mkdir", Path: dir, Cause: err}
	}
	data, err := cbor.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding completion record: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+".cbor")
	if err := atomicfile.Write(path, data, stagingFileMode); err != nil {
		return &rowerr.FilesystemError{Op: "write", Path: path, Cause: err}
	}
	return nil
}

// Merge reads every pending staging file, folds its directories into the
// in-memory store, persists the merged result to the main file, and only
// then deletes the merged staging files. The caller must hold the project lock;
// Merge performs no locking of its own: it is a consumer of the project
// lock, not a provider of one.
func (s *Store) Merge() (merged int, err error) {
	dir := stagingDir(s.stateDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, &rowerr.FilesystemError{Op: "readdir", Path: dir, Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var mergedFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			if errors.Is(readErr, fs.ErrNotExist) {
				continue // raced with a concurrent Merge; harmless
			}
			return merged, &rowerr.FilesystemError{Op: "read", Path: path, Cause: readErr}
		}
		var rec Record
		if err := cbor.Unmarshal(data, &rec); err != nil {
			// A corrupt staging file should not block every other scan's
			// results from landing; skip and remove it.
			mergedFiles = append(mergedFiles, path)
			continue
		}
		set := s.complete[rec.Action]
		if set == nil {
			set = make(map[string]bool, len(rec.Directories))
			s.complete[rec.Action] = set
		}
		for _, d := range rec.Directories {
			set[d] = true
		}
		mergedFiles = append(mergedFiles, path)
		merged++
	}

	if err := s.saveLocked(); err != nil {
		return merged, err
	}
	for _, path := range mergedFiles {
		_ = os.Remove(path)
	}
	return merged, nil
}

// Drop removes directory's completion record for action, e.g. because the
// directory vanished from the workspace.
func (s *Store) Drop(action, directory string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.complete[action]; ok {
		delete(set, directory)
	}
}

// Save persists the current in-memory state to the main file without
// touching the staging directory.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	raw := make(map[string][]string, len(s.complete))
	for action, set := range s.complete {
		dirs := make([]string, 0, len(set))
		for d := range set {
			dirs = append(dirs, d)
		}
		raw[action] = dirs
	}
	data, err := cbor.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding completion store: %w", err)
	}
	return atomicfile.Write(mainPath(s.stateDir), data, 0644)
}

// Clean removes both the main file and any pending staging files. Used by
// `row clean`.
func Clean(stateDir string) error {
	if err := os.Remove(mainPath(stateDir)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &rowerr.FilesystemError{Op: "remove", Path: mainPath(stateDir), Cause: err}
	}
	if err := os.RemoveAll(stagingDir(stateDir)); err != nil {
		return &rowerr.FilesystemError{Op: "removeall", Path: stagingDir(stateDir), Cause: err}
	}
	return nil
}
