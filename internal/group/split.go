package group

import (
	"github.com/jorge-barreto/row/internal/workflow"
)

// Split partitions a sorted directory list into groups: if
// SplitBySortKey, one group per run of adjacent directories whose
// sort_by tuples are equal; otherwise a single group containing
// everything. Each resulting group is then capped at MaximumSize,
// splitting it into consecutive chunks (the final chunk may be smaller).
func Split(sorted []string, spec *workflow.GroupSpec, valueOf ValueOf) [][]string {
	var runs [][]string

	if !spec.SplitBySortKey {
		runs = [][]string{sorted}
	} else {
		runs = splitBySortKey(sorted, spec, valueOf)
	}

	var groups [][]string
	for _, run := range runs {
		groups = append(groups, capSize(run, spec.MaximumSize)...)
	}
	return groups
}

func splitBySortKey(sorted []string, spec *workflow.GroupSpec, valueOf ValueOf) [][]string {
	var runs [][]string
	var current []string
	var currentKey []any

	for _, d := range sorted {
		value, _ := valueOf(d)
		key := make([]any, len(spec.SortBy))
		for i, pointer := range spec.SortBy {
			resolved, _ := resolvePointer(value, pointer)
			key[i] = resolved
		}

		if current == nil || !sameKey(currentKey, key) {
			if current != nil {
				runs = append(runs, current)
			}
			current = []string{d}
			currentKey = key
		} else {
			current = append(current, d)
		}
	}
	if current != nil {
		runs = append(runs, current)
	}
	return runs
}

func sameKey(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalJSON(a[i], b[i]) {
			return false
		}
	}
	return true
}

func capSize(run []string, maximumSize int) [][]string {
	if maximumSize <= 0 || len(run) <= maximumSize {
		return [][]string{run}
	}
	var chunks [][]string
	for i := 0; i < len(run); i += maximumSize {
		end := i + maximumSize
		if end > len(run) {
			end = len(run)
		}
		chunks = append(chunks, run[i:end])
	}
	return chunks
}

// Form builds the full ordered group list for an action's GroupSpec over
// candidates: filter, then sort, then split+cap.
func Form(spec *workflow.GroupSpec, candidates []string, valueOf ValueOf) ([][]string, error) {
	var filtered []string
	for _, d := range candidates {
		ok, err := Matches(spec, d, valueOf)
		if err != nil {
			return nil, err
		}
		if ok {
			filtered = append(filtered, d)
		}
	}

	sorted, err := Sort(filtered, spec, valueOf)
	if err != nil {
		return nil, err
	}

	return Split(sorted, spec, valueOf), nil
}
