package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Deterministic(t *testing.T) {
	a := twoByTwo()
	assert.Equal(t, a.Key(), a.Key())
	assert.Len(t, a.Key().String(), 64, "SHA-256 hex is 64 characters")
}

func TestKey_EqualStatesEqualKeys(t *testing.T) {
	a := twoByTwo()
	b := a.Derive() // shares rows, distinct outer slices
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), a.Clone().Key())
}

func TestKey_ChangesWithEveryMatrix(t *testing.T) {
	base := twoByTwo().Key()

	e := twoByTwo()
	e.Effectors[1].Capacity = 1
	assert.NotEqual(t, base, e.Key(), "effector change")

	tg := twoByTwo()
	tg.Targets[1].Selected = 1
	assert.NotEqual(t, base, tg.Key(), "target change")

	o := twoByTwo()
	o.Opportunities[0][1].Selectable = true
	assert.NotEqual(t, base, o.Key(), "opportunity change")
}

func TestKey_NegativeZeroFolds(t *testing.T) {
	a := twoByTwo()
	a.Targets[0].Value = 0
	b := twoByTwo()
	b.Targets[0].Value = math.Copysign(0, -1)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
}

func TestKey_DimensionsDisambiguate(t *testing.T) {
	// Same number of opportunity cells laid out differently.
	a := State{
		Effectors:     []Effector{{}, {}},
		Targets:       []Target{{}},
		Opportunities: [][]Opportunity{{{}}, {{}}},
	}
	b := State{
		Effectors:     []Effector{{}},
		Targets:       []Target{{}, {}},
		Opportunities: [][]Opportunity{{{}, {}}},
	}
	assert.NotEqual(t, a.Key(), b.Key())
}
