package filters

// HasUnsavedChanges reports whether the effective draft differs from the
// last applied filters. Key order and list item order are ignored. The
// result is advisory only.
func HasUnsavedChanges(draftEffective, lastApplied Filters) bool {
	return !draftEffective.Equal(lastApplied)
}
