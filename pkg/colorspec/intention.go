// Package colorspec models the color-entry domain: a color source
// carries intentions (what it wants from the palette slot it lands
// in), and a staging palette entry accumulates those intentions as
// sources are assigned to it, rejecting conflicting demands.
package colorspec

import "fmt"

// IntentionKey names one fact a color source can assert about the slot
// it wants to land in.
type IntentionKey string

const (
	IntentionColor         IntentionKey = "Color"
	IntentionSlot          IntentionKey = "Slot"
	IntentionName          IntentionKey = "Name"
	IntentionForcedPalette IntentionKey = "RequiresPalette"
)

// IntentionDef governs how an intention behaves once the collection
// holding it is checked for completeness.
type IntentionDef struct {
	// Unique marks an intention that, when set, must be the only color
	// entry to claim that exact value. IntentionCollection records the
	// flag but does not enforce it, and the colortocolor evaluator does
	// not read it either.
	Unique bool
	// Required marks an intention that must be set before
	// IsComplete reports true.
	Required bool
}

var colorEntryDefs = map[IntentionKey]IntentionDef{
	IntentionColor:         {Unique: false, Required: true},
	IntentionSlot:          {Unique: false, Required: false},
	IntentionForcedPalette: {Unique: false, Required: false},
	IntentionName:          {Unique: true, Required: false},
}

// AlreadyAssignedError reports an attempt to overwrite an intention
// that already holds a different value.
type AlreadyAssignedError struct {
	Key              IntentionKey
	Current, Desired any
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("colorspec: intention %q already set to %v, cannot reassign to %v", e.Key, e.Current, e.Desired)
}

// IntentionCollection holds the current value (or absence) of every
// intention defined for a given kind of entry.
type IntentionCollection struct {
	defs   map[IntentionKey]IntentionDef
	values map[IntentionKey]any
}

func newIntentionCollection(defs map[IntentionKey]IntentionDef) *IntentionCollection {
	values := make(map[IntentionKey]any, len(defs))
	for k := range defs {
		values[k] = nil
	}
	return &IntentionCollection{defs: defs, values: values}
}

// Clone returns an independent copy of c.
func (c *IntentionCollection) Clone() *IntentionCollection {
	clone := newIntentionCollection(c.defs)
	for k, v := range c.values {
		clone.values[k] = v
	}
	return clone
}

// Get returns the current value of key, or nil if unset.
func (c *IntentionCollection) Get(key IntentionKey) any {
	return c.values[key]
}

// Def returns the definition for key.
func (c *IntentionCollection) Def(key IntentionKey) IntentionDef {
	return c.defs[key]
}

// TrySet assigns desired to key. Setting nil, or the value already
// held, is a no-op that reports no change. Setting a different value
// than one already held is an AlreadyAssignedError.
func (c *IntentionCollection) TrySet(key IntentionKey, desired any) (changed bool, err error) {
	current := c.values[key]
	if desired == nil || desired == current {
		return false, nil
	}
	if current != nil {
		return false, &AlreadyAssignedError{Key: key, Current: current, Desired: desired}
	}
	c.values[key] = desired
	return true, nil
}

// IsComplete reports whether every Required intention has a value.
func (c *IntentionCollection) IsComplete() bool {
	for key, def := range c.defs {
		if def.Required && c.values[key] == nil {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no intention has a value.
func (c *IntentionCollection) IsEmpty() bool {
	for key := range c.defs {
		if c.values[key] != nil {
			return false
		}
	}
	return true
}
