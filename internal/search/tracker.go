package search

import (
	"slices"

	"github.com/roach88/jfa/internal/model"
)

// tracker answers open and closed membership for a search run.
//
// Both sets are hashed by state key. A key match is confirmed with
// State.Equal so membership means element-wise equality, not just a hash
// match.
//
// CRITICAL DISTINCTION between the two sets:
//   - Open: nodes currently queued in the frontier (removed on pop)
//   - Closed: nodes already expanded (never removed)
//
// A candidate child is a duplicate if it matches either set.
type tracker struct {
	arena  *arena
	open   map[model.StateKey][]int32
	closed map[model.StateKey][]int32
}

func newTracker(a *arena) *tracker {
	return &tracker{
		arena:  a,
		open:   make(map[model.StateKey][]int32),
		closed: make(map[model.StateKey][]int32),
	}
}

// seen reports whether a state equal to s is open or closed.
func (t *tracker) seen(s model.State, key model.StateKey) bool {
	return t.contains(t.closed, s, key) || t.contains(t.open, s, key)
}

// isClosed reports whether a state equal to s has been expanded.
func (t *tracker) isClosed(s model.State, key model.StateKey) bool {
	return t.contains(t.closed, s, key)
}

// markOpen records that idx is queued in the frontier.
func (t *tracker) markOpen(idx int32) {
	key := t.arena.at(idx).key
	t.open[key] = append(t.open[key], idx)
}

// unmarkOpen forgets one queued occurrence of idx.
func (t *tracker) unmarkOpen(idx int32) {
	key := t.arena.at(idx).key
	bucket := t.open[key]
	if i := slices.Index(bucket, idx); i >= 0 {
		bucket = slices.Delete(bucket, i, i+1)
	}
	if len(bucket) == 0 {
		delete(t.open, key)
		return
	}
	t.open[key] = bucket
}

// close records that idx has been expanded.
func (t *tracker) close(idx int32) {
	key := t.arena.at(idx).key
	t.closed[key] = append(t.closed[key], idx)
}

// closedCount returns the number of expanded nodes.
func (t *tracker) closedCount() int {
	n := 0
	for _, bucket := range t.closed {
		n += len(bucket)
	}
	return n
}

func (t *tracker) contains(set map[model.StateKey][]int32, s model.State, key model.StateKey) bool {
	for _, idx := range set[key] {
		if t.arena.at(idx).state.Equal(s) {
			return true
		}
	}
	return false
}
