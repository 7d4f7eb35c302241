// Package workflow parses and validates a project's workflow.toml:
// workspace layout, per-action resources/grouping/dependencies, and the
// default/from inheritance chain.
package workflow

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/jorge-barreto/row/internal/rowerr"
)

// Workspace describes the directory whose children are the project's
// units of work.
type Workspace struct {
	Path      string `toml:"path"`
	ValueFile string `toml:"value_file"`
}

// Resources are an action's per-submission or per-directory resource
// request. At most one of ProcessesPerSubmission/ProcessesPerDirectory,
// and at most one of WalltimePerSubmission/WalltimePerDirectory, may be
// set; Validate rejects setting both of a pair.
type Resources struct {
	ProcessesPerSubmission int `toml:"processes_per_submission"`
	ProcessesPerDirectory  int `toml:"processes_per_directory"`
	ThreadsPerProcess      int `toml:"threads_per_process"`
	GPUsPerProcess         int `toml:"gpus_per_process"`
	WalltimePerSubmission  int `toml:"walltime_per_submission"`
	WalltimePerDirectory   int `toml:"walltime_per_directory"`
}

// IsZero reports whether no resource field has been set, used to detect
// "unset" for inheritance purposes.
func (r Resources) IsZero() bool {
	return r == Resources{}
}

// Condition is a single [pointer, op, operand] triple.
type Condition struct {
	Pointer string
	Op      string
	Operand any
}

// UnmarshalTOML decodes a TOML array of the form [pointer, op, operand].
func (c *Condition) UnmarshalTOML(data any) error {
	arr, ok := data.([]any)
	if !ok || len(arr) != 3 {
		return fmt.Errorf("condition must be a 3-element array [pointer, op, operand]")
	}
	pointer, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("condition: pointer must be a string")
	}
	op, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("condition: operator must be a string")
	}
	c.Pointer = pointer
	c.Op = op
	c.Operand = arr[2]
	return nil
}

// Include is one OR-branch of an action's group.include list: either a
// single condition or an "all" (AND) group of conditions.
type Include struct {
	Condition *Condition  `toml:"condition"`
	All       []Condition `toml:"all"`
}

// GroupSpec controls filtering, sorting, splitting, and capping of the
// directories an action applies to.
type GroupSpec struct {
	Include        []Include `toml:"include"`
	SortBy         []string  `toml:"sort_by"`
	ReverseSort    bool      `toml:"reverse_sort"`
	SplitBySortKey bool      `toml:"split_by_sort_key"`
	MaximumSize    int       `toml:"maximum_size"`
	SubmitWhole    bool      `toml:"submit_whole"`
}

// SubmitOptions are the per-cluster submission overrides for an action.
type SubmitOptions struct {
	Account   string   `toml:"account"`
	Setup     string   `toml:"setup"`
	Custom    []string `toml:"custom"`
	Partition string   `toml:"partition"`
}

// Action is a named shell command applied to directories, with products,
// dependencies, launchers, resources, and grouping rules.
type Action struct {
	Name            string                   `toml:"name"`
	From            string                   `toml:"from"`
	Command         string                   `toml:"command"`
	Products        []string                 `toml:"products"`
	PreviousActions []string                 `toml:"previous_actions"`
	Launchers       []string                 `toml:"launchers"`
	SubmitOptions   map[string]SubmitOptions `toml:"submit_options"`
	Resources       Resources                `toml:"resources"`
	Group           GroupSpec                `toml:"group"`
}

// defaultBlock holds the [default.action] table.
type defaultBlock struct {
	Action Action `toml:"action"`
}

// Workflow is the parsed workflow.toml; Load returns it with every action
// resolved against "from" and the default action.
type Workflow struct {
	Workspace     Workspace    `toml:"workspace"`
	Default       defaultBlock `toml:"default"`
	DefaultAction Action       `toml:"-"`
	Actions       []Action     `toml:"action"`
}

// Load reads, parses, resolves inheritance on, and validates a
// workflow.toml file rooted at projectRoot.
func Load(path, projectRoot string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wf Workflow
	if _, err := toml.Decode(string(data), &wf); err != nil {
		return nil, &rowerr.ConfigParseError{Path: path, Cause: err}
	}
	wf.DefaultAction = wf.Default.Action

	if wf.Workspace.Path != "" && !filepath.IsAbs(wf.Workspace.Path) {
		wf.Workspace.Path = filepath.Join(projectRoot, wf.Workspace.Path)
	}

	merged, err := mergeVariants(wf.Actions)
	if err != nil {
		return nil, err
	}
	for i := range merged {
		resolve(&merged[i], wf.DefaultAction)
	}
	wf.Actions = merged

	if err := Validate(&wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// ActionsByName returns every Action entry (post-merge, a same-named
// group still appears as multiple entries sharing Name, one per disjoint
// include variant) with the given name.
func (w *Workflow) ActionsByName(name string) []*Action {
	var out []*Action
	for i := range w.Actions {
		if w.Actions[i].Name == name {
			out = append(out, &w.Actions[i])
		}
	}
	return out
}

// ActionNames returns the distinct action names in declaration order.
func (w *Workflow) ActionNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range w.Actions {
		if !seen[a.Name] {
			seen[a.Name] = true
			names = append(names, a.Name)
		}
	}
	return names
}
