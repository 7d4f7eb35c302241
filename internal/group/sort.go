package group

import (
	"sort"

	"github.com/jorge-barreto/row/internal/rowerr"
	"github.com/jorge-barreto/row/internal/workflow"
)

// Sort stable-sorts directories by name, then stable-sorts by the tuple
// of sort_by pointers (lexicographic tuple comparison), reversed as a
// whole if reverseSort is set.
func Sort(directories []string, spec *workflow.GroupSpec, valueOf ValueOf) ([]string, error) {
	out := make([]string, len(directories))
	copy(out, directories)
	sortStrings(out)

	if len(spec.SortBy) == 0 {
		return out, nil
	}

	keys := make(map[string][]any, len(out))
	for _, d := range out {
		value, _ := valueOf(d)
		tuple := make([]any, len(spec.SortBy))
		for i, pointer := range spec.SortBy {
			resolved, err := resolvePointer(value, pointer)
			if err != nil {
				return nil, rowerr.MissingPointer(d, pointer)
			}
			tuple[i] = resolved
		}
		keys[d] = tuple
	}

	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c, err := compareTuples(keys[out[i]], keys[out[j]])
		if err != nil {
			sortErr = err
			return false
		}
		if spec.ReverseSort {
			c = -c
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}

	return out, nil
}

func compareTuples(a, b []any) (int, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		c, err := elementCompare(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return compareInt(len(a), len(b)), nil
}
