package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/testutil"
)

func TestTracker_OpenAndClosedMembership(t *testing.T) {
	a := newArena()
	tr := newTracker(a)
	s := testutil.MustReset(testutil.DisjointPairs())
	idx := a.add(node{state: s, key: s.Key(), parent: noParent})

	assert.False(t, tr.seen(s, s.Key()))

	tr.markOpen(idx)
	assert.True(t, tr.seen(s, s.Key()))
	assert.False(t, tr.isClosed(s, s.Key()))

	tr.unmarkOpen(idx)
	assert.False(t, tr.seen(s, s.Key()))
	assert.Empty(t, tr.open)

	tr.close(idx)
	assert.True(t, tr.seen(s, s.Key()))
	assert.True(t, tr.isClosed(s, s.Key()))
	assert.Equal(t, 1, tr.closedCount())
}

func TestTracker_EqualStatesMatchAcrossCopies(t *testing.T) {
	a := newArena()
	tr := newTracker(a)
	s := testutil.MustReset(testutil.DisjointPairs())
	tr.markOpen(a.add(node{state: s, key: s.Key(), parent: noParent}))

	other := s.Clone()
	assert.True(t, tr.seen(other, other.Key()))
}

func TestTracker_KeyMatchRequiresStateEquality(t *testing.T) {
	a := newArena()
	tr := newTracker(a)
	s := testutil.MustReset(testutil.DisjointPairs())
	different := s.Clone()
	different.Targets[0].Value = 1

	// Force a key collision: the stored node claims the key of s but holds
	// a different state.
	tr.close(a.add(node{state: different, key: s.Key(), parent: noParent}))

	assert.False(t, tr.seen(s, s.Key()))
}

func TestTracker_UnmarkOpenRemovesOneOccurrence(t *testing.T) {
	a := newArena()
	tr := newTracker(a)
	s := testutil.MustReset(testutil.SingleEngagement())
	idx := a.add(node{state: s, key: s.Key(), parent: noParent})

	tr.markOpen(idx)
	tr.markOpen(idx)
	tr.unmarkOpen(idx)
	assert.True(t, tr.seen(s, s.Key()))
	tr.unmarkOpen(idx)
	assert.False(t, tr.seen(s, s.Key()))
}
