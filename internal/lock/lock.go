// Package lock provides the advisory project lock that serializes
// refresh/submit/clean operations against a single row project directory.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/jorge-barreto/row/internal/rowerr"
)

const fileName = "project.lock"

const (
	retryDelay = 50 * time.Millisecond
	waitLimit  = 3 * time.Second
)

// Lock wraps an OS-level advisory file lock on the project's state
// directory.
type Lock struct {
	fl *flock.Flock
}

// Acquire blocks (bounded by ctx and an internal short-retry ceiling)
// until the project lock under stateDir is obtained, then returns a Lock
// the caller must Release. Unlike a long-lived daemon lock, row operations
// are short-lived, so contention beyond a few seconds is treated as
// another row process actually working, not a crash — the caller should
// report rowerr.FilesystemError and let the user retry.
func Acquire(ctx context.Context, stateDir string) (*Lock, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, &rowerr.FilesystemError{Op: "mkdir", Path: stateDir, Cause: err}
	}
	path := filepath.Join(stateDir, fileName)
	fl := flock.New(path)

	ctx, cancel := context.WithTimeout(ctx, waitLimit)
	defer cancel()

	ok, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		return nil, &rowerr.FilesystemError{Op: "lock", Path: path, Cause: err}
	}
	if !ok {
		return nil, &rowerr.FilesystemError{
			Op:    "lock",
			Path:  path,
			Cause: fmt.Errorf("another row process holds the project lock"),
		}
	}

	if f := fl.File(); f != nil {
		_, _ = f.WriteString(fmt.Sprintf("%d\n", os.Getpid()))
	}

	return &Lock{fl: fl}, nil
}

// Release unlocks the project lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
