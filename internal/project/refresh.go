package project

import (
	"context"

	"github.com/jorge-barreto/row/internal/lock"
	"github.com/jorge-barreto/row/internal/scheduler"
)

// Refresh acquires the project lock, merges completion staging, polls the
// scheduler and prunes submission entries the active cluster no longer
// recognizes, rediscovers workspace directories, refreshes the value
// cache, persists every store, and releases the lock.
func (p *Project) Refresh(ctx context.Context, sched scheduler.Scheduler, activeCluster string) error {
	return p.RefreshWithProgress(ctx, sched, activeCluster, nil)
}

// RefreshWithProgress is Refresh with a scan-progress callback, so the CLI
// layer can drive a progress bar without internal/scan or internal/value
// knowing progress rendering exists.
func (p *Project) RefreshWithProgress(ctx context.Context, sched scheduler.Scheduler, activeCluster string, onProgress func(done, total int)) error {
	l, err := lock.Acquire(ctx, p.StateDir)
	if err != nil {
		return err
	}
	defer l.Release()

	if _, err := p.Complete.Merge(); err != nil {
		return err
	}
	p.clearSubmissionsNowComplete()

	if sched != nil && activeCluster != "" {
		if err := p.pruneFinishedSubmissions(sched, activeCluster); err != nil {
			return err
		}
	}

	if err := p.Values.Refresh(ctx, p.Workflow.Workspace.Path, p.Workflow.Workspace.ValueFile, p.Scan, onProgress); err != nil {
		return err
	}

	return p.Save()
}

// clearSubmissionsNowComplete drops the submission record for any
// (action, directory) whose products have since appeared: a directory
// that was submitted but whose products also appear becomes Completed,
// and the submitted entry is cleared at refresh.
func (p *Project) clearSubmissionsNowComplete() {
	for _, action := range p.Workflow.ActionNames() {
		for _, dir := range p.Complete.CompleteDirectories(action) {
			for _, c := range p.Clusters.Clusters {
				p.Submit.Forget(c.Name, action, dir)
			}
		}
	}
}

// pruneFinishedSubmissions polls every job id recorded for activeCluster
// and forgets the ones the scheduler no longer reports active. Entries
// under other cluster names are left untouched — the active cluster's
// scheduler cannot observe them, so a refresh against one cluster must
// not silently drop another's bookkeeping.
func (p *Project) pruneFinishedSubmissions(sched scheduler.Scheduler, activeCluster string) error {
	jobIDs := p.Submit.JobIDsFor(activeCluster)
	if len(jobIDs) == 0 {
		return nil
	}

	states, err := sched.Poll(jobIDs)
	if err != nil {
		return err
	}

	for _, action := range p.Workflow.ActionNames() {
		for _, dir := range p.Directories() {
			jobID, ok := p.Submit.SubmittedOn(activeCluster, action, dir)
			if !ok {
				continue
			}
			if st, known := states[jobID]; !known || st == scheduler.JobFinished {
				if !p.Complete.IsComplete(action, dir) {
					p.Submit.Forget(activeCluster, action, dir)
				}
			}
		}
	}
	return nil
}
