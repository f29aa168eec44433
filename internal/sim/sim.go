// Package sim implements the JFA state transition function.
//
// Engaging target t with effector e claims value·p of the target's
// remaining value, spends one effector capacity unit and half of the
// target's engagement allowance. An opportunity is used at most once.
package sim

import (
	"errors"
	"fmt"

	"github.com/roach88/jfa/internal/model"
)

var (
	// ErrOutOfRange is returned for actions outside the state's matrices.
	ErrOutOfRange = errors.New("action out of range")

	// ErrNotSelectable is returned for actions whose opportunity is not selectable.
	ErrNotSelectable = errors.New("action not selectable")
)

// Simulation is the deterministic, non-aliasing transition function.
// The zero value is ready to use.
type Simulation struct{}

// Reset returns the initial state of a problem.
//
// The returned state shares nothing with p. Opportunities of zero-capacity
// effectors and of exhausted targets are normalized to unselectable.
func (Simulation) Reset(p *model.Problem) (model.State, error) {
	if err := p.Validate(); err != nil {
		return model.State{}, fmt.Errorf("reset: %w", err)
	}
	s := p.State()
	for e, eff := range s.Effectors {
		if eff.Capacity == 0 {
			for t := range s.Opportunities[e] {
				s.Opportunities[e][t].Selectable = false
			}
		}
	}
	for t, tgt := range s.Targets {
		if tgt.Exhausted() {
			for e := range s.Opportunities {
				s.Opportunities[e][t].Selectable = false
			}
		}
	}
	return s, nil
}

// Apply engages a.Target with a.Effector and returns the resulting state,
// the expected reward claimed and whether no selectable opportunity remains.
//
// s is never mutated. The result copies the effector and target slices and
// every opportunity row it changes; other rows are shared with s.
func (Simulation) Apply(a model.Action, s model.State) (model.State, float64, bool, error) {
	if a.Effector < 0 || a.Effector >= len(s.Effectors) || a.Target < 0 || a.Target >= len(s.Targets) {
		return model.State{}, 0, false, fmt.Errorf("apply %s: %w", a, ErrOutOfRange)
	}
	if !s.Selectable(a.Effector, a.Target) {
		return model.State{}, 0, false, fmt.Errorf("apply %s: %w", a, ErrNotSelectable)
	}

	next := s.Derive()
	rows := model.NewRowWriter(&next)

	row := rows.Row(a.Effector)
	p := row[a.Target].PSuccess
	row[a.Target].Selectable = false

	tgt := &next.Targets[a.Target]
	reward := tgt.Value * p
	tgt.Value -= reward
	tgt.Selected += model.SelectionStep

	eff := &next.Effectors[a.Effector]
	eff.Capacity--
	if eff.Capacity <= 0 {
		for t := range row {
			row[t].Selectable = false
		}
	}

	if tgt.Exhausted() {
		for e := range next.Opportunities {
			if next.Opportunities[e][a.Target].Selectable {
				rows.Row(e)[a.Target].Selectable = false
			}
		}
	}

	return next, reward, !next.HasSelectable(), nil
}
