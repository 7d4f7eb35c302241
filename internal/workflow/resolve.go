package workflow

// resolve fills unset fields on a from def, field by field. The "from"
// inheritance is applied earlier, by mergeVariants via resolveFrom, so by
// the time resolve runs a field is unset only if neither a nor its "from"
// target declared it.
func resolve(a *Action, def Action) {
	if a.Command == "" {
		a.Command = def.Command
	}
	if len(a.Products) == 0 {
		a.Products = def.Products
	}
	if len(a.PreviousActions) == 0 {
		a.PreviousActions = def.PreviousActions
	}
	if len(a.Launchers) == 0 {
		a.Launchers = def.Launchers
	}
	if len(a.SubmitOptions) == 0 {
		a.SubmitOptions = def.SubmitOptions
	}
	if a.Resources.IsZero() {
		a.Resources = def.Resources
	}
	if len(a.Group.Include) == 0 {
		a.Group.Include = def.Group.Include
	}
	if len(a.Group.SortBy) == 0 {
		a.Group.SortBy = def.Group.SortBy
	}
	if a.Group.MaximumSize == 0 {
		a.Group.MaximumSize = def.Group.MaximumSize
	}
}

// resolveFrom applies the from-target's own declared fields (not yet
// resolved against the default) to a (self wins over from), before
// resolve() applies the global default. Called by mergeVariants once the
// "from" target (the first entry with that name) is known.
func resolveFrom(a *Action, from *Action) {
	if from == nil {
		return
	}
	if a.Command == "" {
		a.Command = from.Command
	}
	if len(a.Products) == 0 {
		a.Products = from.Products
	}
	if len(a.PreviousActions) == 0 {
		a.PreviousActions = from.PreviousActions
	}
	if len(a.Launchers) == 0 {
		a.Launchers = from.Launchers
	}
	if len(a.SubmitOptions) == 0 {
		a.SubmitOptions = from.SubmitOptions
	}
	if a.Resources.IsZero() {
		a.Resources = from.Resources
	}
	if len(a.Group.Include) == 0 {
		a.Group.Include = from.Group.Include
	}
	if len(a.Group.SortBy) == 0 {
		a.Group.SortBy = from.Group.SortBy
	}
	if a.Group.MaximumSize == 0 {
		a.Group.MaximumSize = from.Group.MaximumSize
	}
}
