package workflow

// mergeVariants applies each action's "from" inheritance (self wins over
// the named from-target's own unresolved fields — a single hop, following
// the self -> from -> default precedence) and returns the actions in
// their original order. The same-named-variant identity check
// (products/previous_actions/launchers/resources must match) happens in
// Validate, after resolve() has filled in defaults, since "from" and
// "default" fields also participate in the fields being compared. Whether
// the variants' include sets are disjoint is not checked.
func mergeVariants(actions []Action) ([]Action, error) {
	byName := make(map[string]*Action, len(actions))
	for i := range actions {
		if _, exists := byName[actions[i].Name]; !exists {
			byName[actions[i].Name] = &actions[i]
		}
	}

	out := make([]Action, len(actions))
	copy(out, actions)
	for i := range out {
		if out[i].From == "" {
			continue
		}
		target, ok := byName[out[i].From]
		if !ok {
			continue // surfaced as WorkflowConsistencyError by Validate
		}
		resolveFrom(&out[i], target)
	}
	return out, nil
}
