package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jfa/internal/model"
)

func problem() *model.Problem {
	return &model.Problem{
		Effectors: []model.Effector{{Capacity: 2}, {Capacity: 1}},
		Targets:   []model.Target{{Value: 10}, {Value: 20}},
		Opportunities: [][]model.Opportunity{
			{{Selectable: true, PSuccess: 0.5}, {Selectable: true, PSuccess: 0.4}},
			{{Selectable: true, PSuccess: 0.9}, {Selectable: false, PSuccess: 0.2}},
		},
	}
}

func TestReset_NormalizesSelectability(t *testing.T) {
	p := problem()
	p.Effectors[1].Capacity = 0
	p.Targets[1].Selected = 1

	s, err := Simulation{}.Reset(p)
	require.NoError(t, err)

	assert.False(t, s.Selectable(1, 0), "zero-capacity effector")
	assert.False(t, s.Selectable(0, 1), "exhausted target")
	assert.True(t, s.Selectable(0, 0))
	assert.True(t, p.Opportunities[1][0].Selectable, "problem must not be mutated")
}

func TestReset_RejectsInvalidProblem(t *testing.T) {
	p := problem()
	p.Opportunities = p.Opportunities[:1]
	_, err := Simulation{}.Reset(p)
	assert.ErrorIs(t, err, model.ErrInvalidProblem)
}

func TestApply_RewardAndBookkeeping(t *testing.T) {
	s, err := Simulation{}.Reset(problem())
	require.NoError(t, err)

	next, reward, terminal, err := Simulation{}.Apply(model.Action{Effector: 0, Target: 0}, s)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, reward, 1e-12)
	assert.InDelta(t, 5.0, next.Targets[0].Value, 1e-12)
	assert.Equal(t, 0.5, next.Targets[0].Selected)
	assert.Equal(t, 1, next.Effectors[0].Capacity)
	assert.False(t, next.Selectable(0, 0), "opportunity is used once")
	assert.True(t, next.Selectable(0, 1))
	assert.True(t, next.Selectable(1, 0))
	assert.False(t, terminal)

	// Input untouched.
	assert.True(t, s.Selectable(0, 0))
	assert.Equal(t, 10.0, s.Targets[0].Value)
	assert.Equal(t, 2, s.Effectors[0].Capacity)
}

func TestApply_TargetExhaustionClosesColumn(t *testing.T) {
	s, err := Simulation{}.Reset(problem())
	require.NoError(t, err)

	s1, _, _, err := Simulation{}.Apply(model.Action{Effector: 0, Target: 0}, s)
	require.NoError(t, err)
	s2, reward, _, err := Simulation{}.Apply(model.Action{Effector: 1, Target: 0}, s1)
	require.NoError(t, err)

	assert.InDelta(t, 4.5, reward, 1e-12)
	assert.Equal(t, 1.0, s2.Targets[0].Selected)
	for e := range s2.Effectors {
		assert.False(t, s2.Selectable(e, 0))
	}
	assert.True(t, s1.Selectable(1, 0), "parent state keeps its column")
}

func TestApply_EffectorExhaustionClosesRow(t *testing.T) {
	s, err := Simulation{}.Reset(problem())
	require.NoError(t, err)

	next, _, terminal, err := Simulation{}.Apply(model.Action{Effector: 1, Target: 0}, s)
	require.NoError(t, err)
	assert.Equal(t, 0, next.Effectors[1].Capacity)
	assert.False(t, next.Selectable(1, 1))
	assert.False(t, terminal)
}

func TestApply_Terminal(t *testing.T) {
	p := &model.Problem{
		Effectors:     []model.Effector{{Capacity: 1}},
		Targets:       []model.Target{{Value: 10}},
		Opportunities: [][]model.Opportunity{{{Selectable: true, PSuccess: 0.9}}},
	}
	s, err := Simulation{}.Reset(p)
	require.NoError(t, err)

	next, reward, terminal, err := Simulation{}.Apply(model.Action{Effector: 0, Target: 0}, s)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, reward, 1e-12)
	assert.True(t, terminal)
	assert.False(t, next.HasSelectable())
}

func TestApply_Errors(t *testing.T) {
	s, err := Simulation{}.Reset(problem())
	require.NoError(t, err)

	_, _, _, err = Simulation{}.Apply(model.Action{Effector: 5, Target: 0}, s)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, _, _, err = Simulation{}.Apply(model.Action{Effector: 1, Target: 1}, s)
	assert.ErrorIs(t, err, ErrNotSelectable)
}

func TestApply_CommutativeActionsReachEqualStates(t *testing.T) {
	s, err := Simulation{}.Reset(problem())
	require.NoError(t, err)
	a := model.Action{Effector: 0, Target: 1}
	b := model.Action{Effector: 1, Target: 0}

	ab, _, _, err := Simulation{}.Apply(a, s)
	require.NoError(t, err)
	ab, _, _, err = Simulation{}.Apply(b, ab)
	require.NoError(t, err)

	ba, _, _, err := Simulation{}.Apply(b, s)
	require.NoError(t, err)
	ba, _, _, err = Simulation{}.Apply(a, ba)
	require.NoError(t, err)

	assert.True(t, ab.Equal(ba))
	assert.Equal(t, ab.Key(), ba.Key())
}
