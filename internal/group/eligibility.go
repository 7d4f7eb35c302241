package group

import (
	"github.com/jorge-barreto/row/internal/rowerr"
	"github.com/jorge-barreto/row/internal/workflow"
)

// IsComplete reports whether (action, directory) has been observed
// complete — implemented by internal/completion.Store.
type IsComplete func(action, directory string) bool

// IsSubmitted reports whether (action, directory) has been submitted on
// any cluster — implemented by internal/submission.Store.
type IsSubmitted func(action, directory string) bool

// Eligible filters candidates down to the submission-eligible set for
// action: not already Completed, not already Submitted (any cluster), and
// every previous_action Completed for that directory.
func Eligible(action *workflow.Action, candidates []string, isComplete IsComplete, isSubmitted IsSubmitted) []string {
	var out []string
	for _, d := range candidates {
		if isComplete(action.Name, d) {
			continue
		}
		if isSubmitted(action.Name, d) {
			continue
		}
		blocked := false
		for _, prev := range action.PreviousActions {
			if !isComplete(prev, d) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SubmissionGroups forms the submission-group list for action: eligible
// filter, then the standard filter/sort/split/cap pipeline. If
// SubmitWhole is set, each resulting group must exactly match some group
// produced by the same pipeline over the full (pre-eligibility) include
// set. The first group that does not match makes the whole call fail with
// GroupViolation, and no groups are returned for the action.
func SubmissionGroups(action *workflow.Action, candidates []string, isComplete IsComplete, isSubmitted IsSubmitted, valueOf ValueOf) ([][]string, error) {
	eligible := Eligible(action, candidates, isComplete, isSubmitted)

	groups, err := Form(&action.Group, eligible, valueOf)
	if err != nil {
		return nil, err
	}

	if !action.Group.SubmitWhole {
		return groups, nil
	}

	fullGroups, err := Form(&action.Group, candidates, valueOf)
	if err != nil {
		return nil, err
	}
	wholeSets := make([]map[string]bool, len(fullGroups))
	for i, g := range fullGroups {
		set := make(map[string]bool, len(g))
		for _, d := range g {
			set[d] = true
		}
		wholeSets[i] = set
	}

	var out [][]string
	for _, g := range groups {
		if !matchesAnyWhole(g, wholeSets) {
			return nil, &rowerr.GroupViolation{Action: action.Name, Directories: g}
		}
		out = append(out, g)
	}
	return out, nil
}

func matchesAnyWhole(group []string, wholeSets []map[string]bool) bool {
	for _, set := range wholeSets {
		if len(set) != len(group) {
			continue
		}
		match := true
		for _, d := range group {
			if !set[d] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
