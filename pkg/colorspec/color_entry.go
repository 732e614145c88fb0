package colorspec

// ColorEntry is a single palette slot's accumulated state: the set of
// intentions asserted by whichever color sources have landed in it so
// far. It is the destination type for the colortocolor evaluator, and
// the staging-palette building block for remaptopalette.
type ColorEntry struct {
	Intentions *IntentionCollection
}

// NewColorEntry returns an empty ColorEntry.
func NewColorEntry() *ColorEntry {
	return &ColorEntry{Intentions: newIntentionCollection(colorEntryDefs)}
}

// Clone returns an independent copy, satisfying solver.Cloneable.
func (c *ColorEntry) Clone() any {
	return &ColorEntry{Intentions: c.Intentions.Clone()}
}

// IsEmpty reports whether no intention has been asserted against this
// entry yet.
func (c *ColorEntry) IsEmpty() bool {
	return c.Intentions.IsEmpty()
}
