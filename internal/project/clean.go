package project

import (
	"context"

	"github.com/jorge-barreto/row/internal/completion"
	"github.com/jorge-barreto/row/internal/lock"
	"github.com/jorge-barreto/row/internal/rowerr"
	"github.com/jorge-barreto/row/internal/submission"
	"github.com/jorge-barreto/row/internal/value"
)

// CleanOptions selects which stores `row clean` resets. Completed targets
// the completion store (and its pending staging files), Directory targets
// the per-directory value cache, and Submitted targets the submission
// store. When none are set, all three are reset — a full administrative
// reset, the same behavior as passing all three explicitly.
type CleanOptions struct {
	Completed bool
	Directory bool
	Submitted bool
}

// Clean resets the selected stores for this project. It always refuses
// when any submission is still outstanding, regardless of which stores
// were selected: a still-active job may write completion or value state
// out from under a clean that only meant to touch the other stores.
func (p *Project) Clean(opts CleanOptions) error {
	l, err := lock.Acquire(context.Background(), p.StateDir)
	if err != nil {
		return err
	}
	defer l.Release()

	if p.Submit.Count() > 0 {
		return &rowerr.HasPendingSubmissions{Count: p.Submit.Count()}
	}

	all := !opts.Completed && !opts.Directory && !opts.Submitted

	if opts.Completed || all {
		if err := completion.Clean(p.StateDir); err != nil {
			return err
		}
	}
	if opts.Submitted || all {
		if err := submission.Clean(p.StateDir); err != nil {
			return err
		}
	}
	if opts.Directory || all {
		if err := value.Clean(p.StateDir); err != nil {
			return err
		}
	}
	return nil
}
