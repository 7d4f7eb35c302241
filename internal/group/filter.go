// Package group implements the filter → sort → split → cap pipeline that
// turns an action's include/sort/group specification and a candidate
// directory set into an ordered list of groups.
package group

import (
	"fmt"
	"sort"

	"github.com/go-openapi/jsonpointer"

	"github.com/jorge-barreto/row/internal/rowerr"
	"github.com/jorge-barreto/row/internal/workflow"
)

// ValueOf resolves a directory's cached value, for filter/sort pointer
// lookups.
type ValueOf func(directory string) (any, bool)

// Matches reports whether directory satisfies spec's include array: a
// directory matches if any Include entry matches (OR); an entry with All
// set matches iff every condition in it is true (AND), short-circuited.
// An empty include array matches everything.
func Matches(spec *workflow.GroupSpec, directory string, valueOf ValueOf) (bool, error) {
	if len(spec.Include) == 0 {
		return true, nil
	}
	for _, inc := range spec.Include {
		ok, err := matchesEntry(inc, directory, valueOf)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func matchesEntry(inc workflow.Include, directory string, valueOf ValueOf) (bool, error) {
	if inc.Condition != nil {
		return evalCondition(*inc.Condition, directory, valueOf)
	}
	for _, cond := range inc.All {
		ok, err := evalCondition(cond, directory, valueOf)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalCondition(cond workflow.Condition, directory string, valueOf ValueOf) (bool, error) {
	value, _ := valueOf(directory)
	resolved, err := resolvePointer(value, cond.Pointer)
	if err != nil {
		return false, rowerr.MissingPointer(directory, cond.Pointer)
	}
	return compare(resolved, cond.Op, cond.Operand, directory, cond.Pointer)
}

func resolvePointer(value any, pointer string) (any, error) {
	if pointer == "" || pointer == "/" {
		return value, nil
	}
	ptr, err := jsonpointer.New(pointer)
	if err != nil {
		return nil, err
	}
	resolved, _, err := ptr.Get(value)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// compare implements the JSON-value ordering rule: numbers numerically,
// strings lexicographically, arrays lexicographically element-wise,
// objects equality-only (ordered operators on an object are an error).
func compare(lhs any, op string, rhs any, directory, pointer string) (bool, error) {
	if op == "==" {
		return equalJSON(lhs, rhs), nil
	}

	switch l := lhs.(type) {
	case float64:
		r, ok := rhs.(float64)
		if !ok {
			return false, &rowerr.ValueError{Directory: directory, Pointer: pointer, Cause: fmt.Errorf("type mismatch comparing number to %T", rhs)}
		}
		return compareOrdered(compareFloat(l, r), op), nil
	case string:
		r, ok := rhs.(string)
		if !ok {
			return false, &rowerr.ValueError{Directory: directory, Pointer: pointer, Cause: fmt.Errorf("type mismatch comparing string to %T", rhs)}
		}
		return compareOrdered(compareString(l, r), op), nil
	case []any:
		r, ok := rhs.([]any)
		if !ok {
			return false, &rowerr.ValueError{Directory: directory, Pointer: pointer, Cause: fmt.Errorf("type mismatch comparing array to %T", rhs)}
		}
		c, err := compareArray(l, r)
		if err != nil {
			return false, &rowerr.ValueError{Directory: directory, Pointer: pointer, Cause: err}
		}
		return compareOrdered(c, op), nil
	default:
		return false, &rowerr.ValueError{Directory: directory, Pointer: pointer, Cause: fmt.Errorf("ordered operator %q not valid on %T", op, lhs)}
	}
}

func compareOrdered(c int, op string) bool {
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">=":
		return c >= 0
	case ">":
		return c > 0
	default:
		return false
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareArray(a, b []any) (int, error) {
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

func elementCompare(a, b any) (int, error) {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, fmt.Errorf("type mismatch in array element comparison")
		}
		return compareFloat(av, bv), nil
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("type mismatch in array element comparison")
		}
		return compareString(av, bv), nil
	default:
		return 0, fmt.Errorf("unorderable array element type %T", a)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func equalJSON(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af == bf
	}
	as, asok := a.(string)
	bs, bsok := b.(string)
	if asok && bsok {
		return as == bs
	}
	ab, abok := a.(bool)
	bb, bbok := b.(bool)
	if abok && bbok {
		return ab == bb
	}
	aarr, aarrok := a.([]any)
	barr, barrok := b.([]any)
	if aarrok && barrok {
		if len(aarr) != len(barr) {
			return false
		}
		for i := range aarr {
			if !equalJSON(aarr[i], barr[i]) {
				return false
			}
		}
		return true
	}
	aobj, aobjok := a.(map[string]any)
	bobj, bobjok := b.(map[string]any)
	if aobjok && bobjok {
		if len(aobj) != len(bobj) {
			return false
		}
		for k, av := range aobj {
			bv, ok := bobj[k]
			if !ok || !equalJSON(av, bv) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}

// sortStrings is a small helper used by callers that need a stable,
// deterministic directory-name ordering independent of map iteration.
func sortStrings(s []string) {
	sort.Strings(s)
}
