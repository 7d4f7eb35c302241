// Package cluster loads the user's cluster and launcher configuration
// ($HOME/.config/row/clusters.toml, launchers.toml) and resolves which
// cluster is "active" for the current environment.
package cluster

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/jorge-barreto/row/internal/rowerr"
)

// Partition is one scheduling class within a cluster, with the
// constraints partition auto-selection checks against.
type Partition struct {
	Name                  string `toml:"name"`
	PreventAutoSelect     bool   `toml:"prevent_auto_select"`
	MaximumCPUsPerJob     int    `toml:"maximum_cpus_per_job"`
	RequireCPUsMultipleOf int    `toml:"require_cpus_multiple_of"`
	WarnCPUsNotMultipleOf int    `toml:"warn_cpus_not_multiple_of"`
	CPUsPerNode           int    `toml:"cpus_per_node"`
	MemoryPerCPU          string `toml:"memory_per_cpu"`
	MinimumGPUsPerJob     int    `toml:"minimum_gpus_per_job"`
	MaximumGPUsPerJob     int    `toml:"maximum_gpus_per_job"`
	RequireGPUsMultipleOf int    `toml:"require_gpus_multiple_of"`
	WarnGPUsNotMultipleOf int    `toml:"warn_gpus_not_multiple_of"`
	GPUsPerNode           int    `toml:"gpus_per_node"`
	MemoryPerGPU          string `toml:"memory_per_gpu"`
	AccountSuffix         string `toml:"account_suffix"`
}

// Identify selects this cluster as active, either unconditionally
// (Always) or when the named environment variable equals Value.
type Identify struct {
	Always        bool     `toml:"always"`
	ByEnvironment []string `toml:"by_environment"` // [VAR, VALUE]
}

func (id Identify) matches() bool {
	if id.Always {
		return true
	}
	if len(id.ByEnvironment) == 2 {
		return os.Getenv(id.ByEnvironment[0]) == id.ByEnvironment[1]
	}
	return false
}

// Cluster is one entry in clusters.toml.
type Cluster struct {
	Name       string      `toml:"name"`
	Identify   Identify    `toml:"identify"`
	Scheduler  string      `toml:"scheduler"` // "slurm" | "shell"
	Partitions []Partition `toml:"partition"`
}

const localClusterName = "local"

// localCluster is the synthetic built-in cluster appended after every
// user-defined one — always matches, so it is the fallback of last resort.
func localCluster() Cluster {
	return Cluster{
		Name:      localClusterName,
		Identify:  Identify{Always: true},
		Scheduler: "shell",
	}
}

// Launcher is one launcher profile, scoped per-cluster (or "default").
type Launcher struct {
	Executable    string `toml:"executable"`
	ProcessesFlag string `toml:"processes"`
	ThreadsFlag   string `toml:"threads_per_process"`
	GPUsFlag      string `toml:"gpus_per_process"`
}

// Registry holds the ordered cluster list and the launcher table.
type Registry struct {
	Clusters  []Cluster
	Launchers map[string]map[string]Launcher // launcher name -> cluster-or-"default" -> profile
}

type clustersFile struct {
	Cluster []Cluster `toml:"cluster"`
}

// Load reads clusters.toml and launchers.toml from configDir (typically
// $HOME/.config/row). Missing files decode to empty configuration — a
// registry with only the built-in local cluster is valid.
func Load(configDir string) (*Registry, error) {
	reg := &Registry{Launchers: make(map[string]map[string]Launcher)}

	clustersPath := filepath.Join(configDir, "clusters.toml")
	if _, err := os.Stat(clustersPath); err == nil {
		var cf clustersFile
		if _, err := toml.DecodeFile(clustersPath, &cf); err != nil {
			return nil, &rowerr.ConfigParseError{Path: clustersPath, Cause: err}
		}
		reg.Clusters = cf.Cluster
	} else if !os.IsNotExist(err) {
		return nil, &rowerr.FilesystemError{Op: "stat", Path: clustersPath, Cause: err}
	}
	reg.Clusters = append(reg.Clusters, localCluster())

	launchersPath := filepath.Join(configDir, "launchers.toml")
	if _, err := os.Stat(launchersPath); err == nil {
		var raw map[string]map[string]Launcher
		if _, err := toml.DecodeFile(launchersPath, &raw); err != nil {
			return nil, &rowerr.ConfigParseError{Path: launchersPath, Cause: err}
		}
		reg.Launchers = raw
	} else if !os.IsNotExist(err) {
		return nil, &rowerr.FilesystemError{Op: "stat", Path: launchersPath, Cause: err}
	}

	return reg, nil
}

// Active returns the active cluster: forcedName if set (first cluster
// with that name), otherwise the first cluster whose Identify matches, in
// listed order (user-defined clusters first, "local" last as catch-all).
func (r *Registry) Active(forcedName string) (*Cluster, error) {
	if forcedName != "" {
		return r.ByName(forcedName)
	}
	for i := range r.Clusters {
		if r.Clusters[i].Identify.matches() {
			return &r.Clusters[i], nil
		}
	}
	return nil, &rowerr.NotFound{Kind: "cluster", Name: "(none matched identify rules)"}
}

// ByName returns the first cluster with the given name.
func (r *Registry) ByName(name string) (*Cluster, error) {
	for i := range r.Clusters {
		if r.Clusters[i].Name == name {
			return &r.Clusters[i], nil
		}
	}
	return nil, &rowerr.NotFound{Kind: "cluster", Name: name}
}

// LaunchersFor resolves launcher profiles by name for the given cluster,
// falling back to the "default" scope when no cluster-specific entry
// exists. Unknown launcher names are errors.
func (r *Registry) LaunchersFor(names []string, clusterName string) ([]Launcher, error) {
	out := make([]Launcher, 0, len(names))
	for _, name := range names {
		scopes, ok := r.Launchers[name]
		if !ok {
			return nil, &rowerr.NotFound{Kind: "launcher", Name: name}
		}
		profile, ok := scopes[clusterName]
		if !ok {
			profile, ok = scopes["default"]
		}
		if !ok {
			return nil, &rowerr.NotFound{Kind: "launcher profile", Name: name + "@" + clusterName}
		}
		out = append(out, profile)
	}
	return out, nil
}
