// Package submission tracks which (cluster, action, directory) triples
// have been submitted to a scheduler and under what job id, so that a
// later `row submit` run does not resubmit work already in flight.
package submission

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/jorge-barreto/row/internal/atomicfile"
	"github.com/jorge-barreto/row/internal/rowerr"
)

const fileName = "submitted.cbor"

// Entry is one submitted unit: the scheduler-assigned job id for an
// action+directory pair on a given cluster.
type Entry struct {
	Action    string `cbor:"action"`
	Directory string `cbor:"directory"`
	JobID     string `cbor:"job_id"`
}

// Store holds, per cluster, the set of submitted (action, directory)
// pairs and their job ids.
type Store struct {
	mu       sync.RWMutex
	path     string
	clusters map[string]map[key]string // cluster -> (action,directory) -> job id
}

type key struct {
	Action    string
	Directory string
}

func filePath(stateDir string) string { return filepath.Join(stateDir, fileName) }

type onDisk struct {
	Clusters map[string][]Entry `cbor:"clusters"`
}

// Open loads the submission store from stateDir, creating an empty one if
// it does not yet exist.
func Open(stateDir string) (*Store, error) {
	s := &Store{path: filePath(stateDir), clusters: make(map[string]map[key]string)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, &rowerr.FilesystemError{Op: "read", Path: s.path, Cause: err}
	}

	var raw onDisk
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, &rowerr.StaleCacheError{Path: s.path, Cause: err}
	}
	for cluster, entries := range raw.Clusters {
		m := make(map[key]string, len(entries))
		for _, e := range entries {
			m[key{e.Action, e.Directory}] = e.JobID
		}
		s.clusters[cluster] = m
	}
	return s, nil
}

// SubmittedAnyCluster reports whether (action, directory) has a recorded
// submission on any cluster — used to classify a directory as Submitted
// regardless of which cluster it went to.
func (s *Store) SubmittedAnyCluster(action, directory string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := key{action, directory}
	for _, m := range s.clusters {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// SubmittedOn reports whether (action, directory) was submitted
// specifically on cluster, and if so its job id.
func (s *Store) SubmittedOn(cluster, action, directory string) (jobID string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobID, ok = s.clusters[cluster][key{action, directory}]
	return jobID, ok
}

// Record marks (action, directory) as submitted on cluster under jobID.
func (s *Store) Record(cluster, action, directory, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.clusters[cluster]
	if m == nil {
		m = make(map[key]string)
		s.clusters[cluster] = m
	}
	m[key{action, directory}] = jobID
}

// Forget removes the submission record for (action, directory) on
// cluster, e.g. after the scheduler reports the job is no longer queued
// or running and its products were not produced, allowing resubmission.
func (s *Store) Forget(cluster, action, directory string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.clusters[cluster]; ok {
		delete(m, key{action, directory})
	}
}

// JobIDsFor returns every job id recorded on cluster, for polling.
func (s *Store) JobIDsFor(cluster string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.clusters[cluster]
	out := make([]string, 0, len(m))
	for _, jobID := range m {
		out = append(out, jobID)
	}
	return out
}

// Count returns the total number of recorded submissions across all
// clusters, used by `row clean` to refuse deletion while jobs are active.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.clusters {
		n += len(m)
	}
	return n
}

// Save persists the store to disk atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw := onDisk{Clusters: make(map[string][]Entry, len(s.clusters))}
	for cluster, m := range s.clusters {
		entries := make([]Entry, 0, len(m))
		for k, jobID := range m {
			entries = append(entries, Entry{Action: k.Action, Directory: k.Directory, JobID: jobID})
		}
		raw.Clusters[cluster] = entries
	}
	data, err := cbor.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding submission store: %w", err)
	}
	return atomicfile.Write(s.path, data, 0644)
}

// Clean removes the submission store file. Callers should check Count()
// first and refuse unless the caller has confirmed no jobs are active.
func Clean(stateDir string) error {
	if err := os.Remove(filePath(stateDir)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &rowerr.FilesystemError{Op: "remove", Path: filePath(stateDir), Cause: err}
	}
	return nil
}
