package datepicker

// Mode is the direction a drag applies: add dates or remove them.
type Mode int

const (
	// ModeAdd selects every date in the range that is not already selected.
	ModeAdd Mode = iota
	// ModeRemove deselects every date in the range that is selected.
	ModeRemove
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeRemove {
		return "remove"
	}
	return "add"
}

// SelectionSet is an ordered collection of unique date keys. It has value
// semantics: mutating methods return a new set and leave the receiver alone,
// so a caller can keep the previous selection around for comparison.
//
// The zero value is an empty set.
type SelectionSet struct {
	keys  []string
	index map[string]struct{}
}

// NewSelectionSet builds a set from keys, keeping the first occurrence of
// any duplicate.
func NewSelectionSet(keys ...string) SelectionSet {
	s := SelectionSet{
		keys:  make([]string, 0, len(keys)),
		index: make(map[string]struct{}, len(keys)),
	}
	for _, k := range keys {
		if _, ok := s.index[k]; ok {
			continue
		}
		s.index[k] = struct{}{}
		s.keys = append(s.keys, k)
	}
	return s
}

// Has reports whether key is selected.
func (s SelectionSet) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Len returns the number of selected dates.
func (s SelectionSet) Len() int {
	return len(s.keys)
}

// Keys returns a copy of the keys in insertion order.
func (s SelectionSet) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Equal reports whether both sets hold the same keys. Order is ignored.
func (s SelectionSet) Equal(other SelectionSet) bool {
	if len(s.keys) != len(other.keys) {
		return false
	}
	for _, k := range s.keys {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// ToggleOne removes the day if it is selected and appends it otherwise.
func (s SelectionSet) ToggleOne(day CalendarDay) SelectionSet {
	key := day.Key()
	if s.Has(key) {
		return s.without(map[string]struct{}{key: {}})
	}
	return NewSelectionSet(append(s.Keys(), key)...)
}

// ApplyRange adds (ModeAdd) or removes (ModeRemove) every day in days.
// Days already in the target state are left alone, so applying the same
// range twice gives the same set as applying it once.
func (s SelectionSet) ApplyRange(days []CalendarDay, mode Mode) SelectionSet {
	if mode == ModeRemove {
		drop := make(map[string]struct{}, len(days))
		for _, d := range days {
			drop[d.Key()] = struct{}{}
		}
		return s.without(drop)
	}

	keys := s.Keys()
	for _, d := range days {
		keys = append(keys, d.Key())
	}
	// NewSelectionSet skips keys that were already present.
	return NewSelectionSet(keys...)
}

// without returns a copy of s minus the keys in drop, order preserved.
func (s SelectionSet) without(drop map[string]struct{}) SelectionSet {
	keys := make([]string, 0, len(s.keys))
	for _, k := range s.keys {
		if _, ok := drop[k]; !ok {
			keys = append(keys, k)
		}
	}
	return NewSelectionSet(keys...)
}
