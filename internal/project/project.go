// Package project is the orchestrator: it owns the workflow definition,
// the three persistent stores, the scheduler, and the cluster/launcher
// registry, and implements refresh/status/submit.
package project

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/jorge-barreto/row/internal/cluster"
	"github.com/jorge-barreto/row/internal/completion"
	"github.com/jorge-barreto/row/internal/rowerr"
	"github.com/jorge-barreto/row/internal/scan"
	"github.com/jorge-barreto/row/internal/submission"
	"github.com/jorge-barreto/row/internal/value"
	"github.com/jorge-barreto/row/internal/workflow"
)

const stateDirName = ".row"

// Project owns the workflow, the three stores, and the cluster registry
// for one project root directory. Stores expose snapshots by value to
// callers to avoid aliasing concurrent writers.
type Project struct {
	Root     string
	StateDir string
	Workflow *workflow.Workflow
	Values   *value.Store
	Complete *completion.Store
	Submit   *submission.Store
	Clusters *cluster.Registry
	Scan     *scan.Pool
	Log      zerolog.Logger
}

// Open loads the workflow and all three stores from root. It does not
// acquire the project lock — callers performing a mutating operation
// (refresh, submit, clean) must do that themselves around the span that
// needs it.
func Open(root, configDir string, log zerolog.Logger) (*Project, error) {
	wf, err := workflow.Load(filepath.Join(root, "workflow.toml"), root)
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(root, stateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, &rowerr.FilesystemError{Op: "mkdir", Path: stateDir, Cause: err}
	}

	values, err := value.Open(stateDir)
	if err != nil {
		return nil, err
	}
	complete, err := completion.Open(stateDir)
	if err != nil {
		return nil, err
	}
	submissions, err := submission.Open(stateDir)
	if err != nil {
		return nil, err
	}
	clusters, err := cluster.Load(configDir)
	if err != nil {
		return nil, err
	}
	ioThreads, _ := strconv.Atoi(os.Getenv("ROW_IO_THREADS"))

	return &Project{
		Root:     root,
		StateDir: stateDir,
		Workflow: wf,
		Values:   values,
		Complete: complete,
		Submit:   submissions,
		Clusters: clusters,
		Scan:     scan.NewPool(ioThreads),
		Log:      log,
	}, nil
}

// FindRoot searches upward from start for a directory containing
// workflow.toml, so row can be invoked from any subdirectory of a
// project.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "workflow.toml")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &rowerr.NotFound{Kind: "workflow.toml", Name: start}
		}
		dir = parent
	}
}

// Directories returns the workspace's currently cached directory names,
// sorted.
func (p *Project) Directories() []string {
	dirs := p.Values.Directories()
	sort.Strings(dirs)
	return dirs
}

// Save persists every store to disk. Callers hold the project lock
// across refresh/submit and call Save before releasing it.
func (p *Project) Save() error {
	if err := p.Values.Save(); err != nil {
		return err
	}
	if err := p.Complete.Save(); err != nil {
		return err
	}
	if err := p.Submit.Save(); err != nil {
		return err
	}
	return nil
}
