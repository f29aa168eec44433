package model

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidProblem is wrapped by every Problem.Validate failure.
var ErrInvalidProblem = errors.New("invalid problem")

// Problem is a persisted problem instance.
type Problem struct {
	Name          string          `json:"name,omitempty" yaml:"name,omitempty"`
	Effectors     []Effector      `json:"effectors" yaml:"effectors"`
	Targets       []Target        `json:"targets" yaml:"targets"`
	Opportunities [][]Opportunity `json:"opportunities" yaml:"opportunities"`
}

// Validate checks dimensions and value ranges.
func (p *Problem) Validate() error {
	if len(p.Opportunities) != len(p.Effectors) {
		return fmt.Errorf("%w: %d opportunity rows for %d effectors",
			ErrInvalidProblem, len(p.Opportunities), len(p.Effectors))
	}
	for e, eff := range p.Effectors {
		if eff.Capacity < 0 {
			return fmt.Errorf("%w: effector %d has negative capacity", ErrInvalidProblem, e)
		}
	}
	for t, tgt := range p.Targets {
		if tgt.Value < 0 {
			return fmt.Errorf("%w: target %d has negative value", ErrInvalidProblem, t)
		}
		if tgt.Selected < 0 || tgt.Selected > 1 {
			return fmt.Errorf("%w: target %d selected fraction %v outside [0,1]",
				ErrInvalidProblem, t, tgt.Selected)
		}
	}
	for e, row := range p.Opportunities {
		if len(row) != len(p.Targets) {
			return fmt.Errorf("%w: opportunity row %d has %d columns for %d targets",
				ErrInvalidProblem, e, len(row), len(p.Targets))
		}
		for t, o := range row {
			if o.PSuccess < 0 || o.PSuccess > 1 {
				return fmt.Errorf("%w: opportunity (%d, %d) probability %v outside [0,1]",
					ErrInvalidProblem, e, t, o.PSuccess)
			}
		}
	}
	return nil
}

// State returns the problem matrices as a State sharing nothing with p.
func (p *Problem) State() State {
	return State{
		Effectors:     p.Effectors,
		Targets:       p.Targets,
		Opportunities: p.Opportunities,
	}.Clone()
}

// TotalValue sums the target values of the instance.
func (p *Problem) TotalValue() float64 {
	total := 0.0
	for _, t := range p.Targets {
		total += t.Value
	}
	return total
}

// SelectableCount counts the selectable opportunities of the instance.
func (p *Problem) SelectableCount() int {
	n := 0
	for _, row := range p.Opportunities {
		for _, o := range row {
			if o.Selectable {
				n++
			}
		}
	}
	return n
}

// ID computes the content-addressed identity of the problem.
// The name is NFC normalized so visually identical names hash alike.
func (p *Problem) ID() string {
	name := norm.NFC.String(p.Name)
	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(name)))
	buf = append(buf, name...)
	key := p.State().Key()
	buf = append(buf, key[:]...)
	return hashWithDomain(DomainProblem, buf)
}
