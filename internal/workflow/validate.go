package workflow

import (
	"reflect"

	"github.com/jorge-barreto/row/internal/rowerr"
)

var validOps = map[string]bool{
	"<": true, "<=": true, "==": true, ">=": true, ">": true,
}

// Validate checks cross-action consistency: every previous_actions entry
// resolves to a declared action, same-named action entries agree on
// products/previous_actions/launchers/resources, and resource/group
// fields are internally consistent.
func Validate(wf *Workflow) error {
	if wf.Workspace.Path == "" {
		return &rowerr.SchemaError{Path: "workspace", Message: "'path' is required"}
	}

	names := make(map[string]bool)
	for _, a := range wf.Actions {
		names[a.Name] = true
	}

	byName := make(map[string][]*Action)
	for i := range wf.Actions {
		a := &wf.Actions[i]
		if a.Name == "" {
			return &rowerr.SchemaError{Path: "action", Message: "'name' is required"}
		}
		byName[a.Name] = append(byName[a.Name], a)

		for _, prev := range a.PreviousActions {
			if !names[prev] {
				return &rowerr.WorkflowConsistencyError{
					Message: "action " + quote(a.Name) + ": previous_actions references unknown action " + quote(prev),
				}
			}
		}

		if err := validateResources(a); err != nil {
			return err
		}
		if err := validateGroup(a); err != nil {
			return err
		}
	}

	for name, variants := range byName {
		if len(variants) < 2 {
			continue
		}
		first := variants[0]
		for _, v := range variants[1:] {
			if !reflect.DeepEqual(first.Products, v.Products) ||
				!reflect.DeepEqual(first.PreviousActions, v.PreviousActions) ||
				!reflect.DeepEqual(first.Launchers, v.Launchers) ||
				!reflect.DeepEqual(first.Resources, v.Resources) {
				return &rowerr.WorkflowConsistencyError{
					Message: "action " + quote(name) + ": same-named entries must share identical products, previous_actions, launchers, and resources",
				}
			}
		}
	}

	return nil
}

func validateResources(a *Action) error {
	r := a.Resources
	if r.ProcessesPerSubmission != 0 && r.ProcessesPerDirectory != 0 {
		return &rowerr.SchemaError{
			Path:    "action " + quote(a.Name) + ".resources",
			Message: "processes_per_submission and processes_per_directory are mutually exclusive",
		}
	}
	if r.WalltimePerSubmission != 0 && r.WalltimePerDirectory != 0 {
		return &rowerr.SchemaError{
			Path:    "action " + quote(a.Name) + ".resources",
			Message: "walltime_per_submission and walltime_per_directory are mutually exclusive",
		}
	}
	return nil
}

func validateGroup(a *Action) error {
	for _, inc := range a.Group.Include {
		if inc.Condition != nil && len(inc.All) > 0 {
			return &rowerr.SchemaError{
				Path:    "action " + quote(a.Name) + ".group.include",
				Message: "an include entry must use either 'condition' or 'all', not both",
			}
		}
		conds := inc.All
		if inc.Condition != nil {
			conds = []Condition{*inc.Condition}
		}
		for _, c := range conds {
			if !validOps[c.Op] {
				return &rowerr.SchemaError{
					Path:    "action " + quote(a.Name) + ".group.include",
					Message: "unknown operator " + quote(c.Op),
				}
			}
		}
	}
	if a.Group.MaximumSize < 0 {
		return &rowerr.SchemaError{
			Path:    "action " + quote(a.Name) + ".group",
			Message: "maximum_size must be >= 0",
		}
	}
	return nil
}

func quote(s string) string { return "\"" + s + "\"" }
