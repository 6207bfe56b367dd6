package collision

import (
	"fmt"

	"github.com/arloliu/caplog/errs"
)

// Tracker detects duplicate names among siblings of an entry or among the logs of a manager.
// It remembers the declaration order of every accepted name.
type Tracker struct {
	index map[string]int // name → declaration order
	names []string       // accepted names in declaration order
}

// NewTracker creates an empty tracker sized for capacity names.
func NewTracker(capacity int) *Tracker {
	return &Tracker{
		index: make(map[string]int, capacity),
		names: make([]string, 0, capacity),
	}
}

// Track records name and returns its declaration index.
//
// Names are compared case-sensitively. A name that was already tracked is rejected with
// ErrDuplicateName and the tracker is left unchanged.
//
// Parameters:
//   - name: The name to record
//
// Returns:
//   - int: Declaration index of the accepted name
//   - error: ErrDuplicateName if name was tracked before
func (t *Tracker) Track(name string) (int, error) {
	if first, exists := t.index[name]; exists {
		return -1, fmt.Errorf("%w: %q already declared at position %d", errs.ErrDuplicateName, name, first)
	}

	idx := len(t.names)
	t.index[name] = idx
	t.names = append(t.names, name)

	return idx, nil
}

// TrackAll records every name in order and stops at the first duplicate.
func (t *Tracker) TrackAll(names ...string) error {
	for _, name := range names {
		if _, err := t.Track(name); err != nil {
			return err
		}
	}

	return nil
}

// Contains reports whether name has been tracked.
func (t *Tracker) Contains(name string) bool {
	_, exists := t.index[name]
	return exists
}

// Names returns the tracked names in declaration order.
func (t *Tracker) Names() []string {
	return t.names
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.names)
}

// Reset forgets every tracked name while keeping allocated capacity.
func (t *Tracker) Reset() {
	clear(t.index)
	t.names = t.names[:0]
}
