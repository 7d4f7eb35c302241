package group

import (
	"testing"

	"github.com/jorge-barreto/row/internal/workflow"
)

func valueMap(m map[string]any) ValueOf {
	return func(d string) (any, bool) {
		v, ok := m[d]
		return v, ok
	}
}

func TestMatches_NoInclude(t *testing.T) {
	spec := &workflow.GroupSpec{}
	ok, err := Matches(spec, "d0", valueMap(nil))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestMatches_Condition(t *testing.T) {
	spec := &workflow.GroupSpec{
		Include: []workflow.Include{{Condition: &workflow.Condition{Pointer: "/n", Op: ">=", Operand: 10.0}}},
	}
	values := valueMap(map[string]any{
		"d0": map[string]any{"n": 5.0},
		"d1": map[string]any{"n": 15.0},
	})
	ok0, _ := Matches(spec, "d0", values)
	ok1, _ := Matches(spec, "d1", values)
	if ok0 || !ok1 {
		t.Fatalf("d0=%v d1=%v", ok0, ok1)
	}
}

func TestMatches_AllIsAND(t *testing.T) {
	spec := &workflow.GroupSpec{
		Include: []workflow.Include{{All: []workflow.Condition{
			{Pointer: "/n", Op: ">=", Operand: 10.0},
			{Pointer: "/tag", Op: "==", Operand: "x"},
		}}},
	}
	values := valueMap(map[string]any{
		"d0": map[string]any{"n": 15.0, "tag": "y"},
		"d1": map[string]any{"n": 15.0, "tag": "x"},
	})
	ok0, _ := Matches(spec, "d0", values)
	ok1, _ := Matches(spec, "d1", values)
	if ok0 || !ok1 {
		t.Fatalf("d0=%v d1=%v", ok0, ok1)
	}
}

func TestMatches_TypeMismatchIsError(t *testing.T) {
	spec := &workflow.GroupSpec{
		Include: []workflow.Include{{Condition: &workflow.Condition{Pointer: "/n", Op: ">=", Operand: "nope"}}},
	}
	values := valueMap(map[string]any{"d0": map[string]any{"n": 5.0}})
	if _, err := Matches(spec, "d0", values); err == nil {
		t.Fatal("expected type mismatch error")
	}
}

func TestSort_ByNameThenSortKey(t *testing.T) {
	spec := &workflow.GroupSpec{SortBy: []string{"/n"}}
	values := valueMap(map[string]any{
		"b": map[string]any{"n": 1.0},
		"a": map[string]any{"n": 2.0},
	})
	sorted, err := Sort([]string{"b", "a"}, spec, values)
	if err != nil {
		t.Fatal(err)
	}
	if sorted[0] != "b" || sorted[1] != "a" {
		t.Fatalf("sorted = %v, want [b a]", sorted)
	}
}

func TestSort_Reverse(t *testing.T) {
	spec := &workflow.GroupSpec{SortBy: []string{"/n"}, ReverseSort: true}
	values := valueMap(map[string]any{
		"a": map[string]any{"n": 1.0},
		"b": map[string]any{"n": 2.0},
	})
	sorted, err := Sort([]string{"a", "b"}, spec, values)
	if err != nil {
		t.Fatal(err)
	}
	if sorted[0] != "b" || sorted[1] != "a" {
		t.Fatalf("sorted = %v, want [b a]", sorted)
	}
}

func TestSplit_BySortKey(t *testing.T) {
	spec := &workflow.GroupSpec{SortBy: []string{"/n"}, SplitBySortKey: true}
	values := valueMap(map[string]any{
		"a": map[string]any{"n": 1.0},
		"b": map[string]any{"n": 1.0},
		"c": map[string]any{"n": 2.0},
	})
	groups := Split([]string{"a", "b", "c"}, spec, values)
	if len(groups) != 2 {
		t.Fatalf("groups = %v, want 2 runs", groups)
	}
	if len(groups[0]) != 2 || len(groups[1]) != 1 {
		t.Fatalf("groups = %v, want [[a b] [c]]", groups)
	}
}

func TestSplit_MaximumSize(t *testing.T) {
	spec := &workflow.GroupSpec{MaximumSize: 2}
	groups := Split([]string{"a", "b", "c", "d", "e"}, spec, valueMap(nil))
	if len(groups) != 3 {
		t.Fatalf("groups = %v, want 3 chunks", groups)
	}
	if len(groups[2]) != 1 {
		t.Fatalf("last chunk = %v, want size 1", groups[2])
	}
}

func TestEligible_FiltersCompletedSubmittedAndBlocked(t *testing.T) {
	action := &workflow.Action{Name: "simulate", PreviousActions: []string{"init"}}
	complete := map[string]map[string]bool{
		"simulate": {"d0": true},
		"init":     {"d0": true, "d2": true, "d3": true},
	}
	isComplete := func(a, d string) bool { return complete[a][d] }
	isSubmitted := func(a, d string) bool { return a == "simulate" && d == "d3" }

	eligible := Eligible(action, []string{"d0", "d1", "d2", "d3"}, isComplete, isSubmitted)
	if len(eligible) != 1 || eligible[0] != "d2" {
		t.Fatalf("eligible = %v, want [d2]", eligible)
	}
}

func TestSubmissionGroups_SubmitWholeViolation(t *testing.T) {
	action := &workflow.Action{
		Name:  "simulate",
		Group: workflow.GroupSpec{SubmitWhole: true, MaximumSize: 0},
	}
	isComplete := func(a, d string) bool { return d == "d1" } // d1 already complete
	isSubmitted := func(a, d string) bool { return false }

	_, err := SubmissionGroups(action, []string{"d0", "d1"}, isComplete, isSubmitted, valueMap(nil))
	if err == nil {
		t.Fatal("expected NotWhole violation since d1 dropped by eligibility")
	}
}

func TestSubmissionGroups_WholeOK(t *testing.T) {
	action := &workflow.Action{
		Name:  "simulate",
		Group: workflow.GroupSpec{SubmitWhole: true},
	}
	isComplete := func(a, d string) bool { return false }
	isSubmitted := func(a, d string) bool { return false }

	groups, err := SubmissionGroups(action, []string{"d0", "d1"}, isComplete, isSubmitted, valueMap(nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || len(groups[0]) != 2 {
		t.Fatalf("groups = %v", groups)
	}
}
