package accesslist

import (
	"sync"

	"github.com/keyward/keyward/internal/onewire"
)

// List is a concurrency-safe set of authorized token identifiers.
type List struct {
	mu  sync.RWMutex
	ids map[onewire.TokenID]struct{}
}

// New returns an empty list.
func New() *List {
	return &List{ids: make(map[onewire.TokenID]struct{})}
}

// NewFromIDs returns a list seeded with ids. Duplicates collapse.
func NewFromIDs(ids []onewire.TokenID) *List {
	l := &List{ids: make(map[onewire.TokenID]struct{}, len(ids))}
	for _, id := range ids {
		l.ids[id] = struct{}{}
	}
	return l
}

// Contains reports whether id is currently authorized.
func (l *List) Contains(id onewire.TokenID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[id]
	return ok
}

// Insert adds id to the list and reports whether it was absent before.
func (l *List) Insert(id onewire.TokenID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.ids[id]; ok {
		return false
	}
	l.ids[id] = struct{}{}
	return true
}

// Retain removes every identifier for which keep returns false and
// reports how many were removed. The sweep runs under the write lock,
// so readers observe the set either before or after it, never halfway
// through; keep must not call back into the list.
func (l *List) Retain(keep func(onewire.TokenID) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for id := range l.ids {
		if !keep(id) {
			delete(l.ids, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of authorized identifiers.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ids)
}

// Snapshot returns the current members in unspecified order.
func (l *List) Snapshot() []onewire.TokenID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]onewire.TokenID, 0, len(l.ids))
	for id := range l.ids {
		out = append(out, id)
	}
	return out
}
