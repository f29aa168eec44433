package model

// State is a snapshot of the three feature matrices.
//
// Opportunities[e][t] describes effector e against target t. Rows may be
// shared between states (see package doc); treat a State received from
// elsewhere as read-only.
type State struct {
	Effectors     []Effector
	Targets       []Target
	Opportunities [][]Opportunity
}

// NumEffectors returns the number of effector rows.
func (s State) NumEffectors() int { return len(s.Effectors) }

// NumTargets returns the number of target columns.
func (s State) NumTargets() int { return len(s.Targets) }

// Selectable reports whether effector e may engage target t.
// Out-of-range indices are not selectable.
func (s State) Selectable(e, t int) bool {
	if e < 0 || e >= len(s.Opportunities) {
		return false
	}
	row := s.Opportunities[e]
	if t < 0 || t >= len(row) {
		return false
	}
	return row[t].Selectable
}

// SelectableActions lists every selectable action in row-major order
// (effector ascending, then target ascending).
func (s State) SelectableActions() []Action {
	var actions []Action
	for e, row := range s.Opportunities {
		for t, opp := range row {
			if opp.Selectable {
				actions = append(actions, Action{Effector: e, Target: t})
			}
		}
	}
	return actions
}

// HasSelectable reports whether any opportunity is still selectable.
func (s State) HasSelectable() bool {
	for _, row := range s.Opportunities {
		for _, opp := range row {
			if opp.Selectable {
				return true
			}
		}
	}
	return false
}

// SelectableAgainst counts selectable opportunities against target t.
func (s State) SelectableAgainst(t int) int {
	n := 0
	for _, row := range s.Opportunities {
		if row[t].Selectable {
			n++
		}
	}
	return n
}

// TotalValue sums the remaining value of all targets.
func (s State) TotalValue() float64 {
	total := 0.0
	for _, t := range s.Targets {
		total += t.Value
	}
	return total
}

// Equal reports element-wise equality of all three matrices.
func (s State) Equal(o State) bool {
	if len(s.Effectors) != len(o.Effectors) || len(s.Targets) != len(o.Targets) ||
		len(s.Opportunities) != len(o.Opportunities) {
		return false
	}
	for i := range s.Effectors {
		if s.Effectors[i] != o.Effectors[i] {
			return false
		}
	}
	for i := range s.Targets {
		if s.Targets[i] != o.Targets[i] {
			return false
		}
	}
	for e := range s.Opportunities {
		a, b := s.Opportunities[e], o.Opportunities[e]
		if len(a) != len(b) {
			return false
		}
		// Shared rows are equal without a scan.
		if len(a) > 0 && &a[0] == &b[0] {
			continue
		}
		for t := range a {
			if a[t] != b[t] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy that shares nothing with s.
func (s State) Clone() State {
	c := State{
		Effectors:     append([]Effector(nil), s.Effectors...),
		Targets:       append([]Target(nil), s.Targets...),
		Opportunities: make([][]Opportunity, len(s.Opportunities)),
	}
	for e, row := range s.Opportunities {
		c.Opportunities[e] = append([]Opportunity(nil), row...)
	}
	return c
}

// Derive returns a copy of s whose effector and target slices are private
// and whose opportunity rows are still shared with s. Rows must be made
// private with MutableRow before they are written.
func (s State) Derive() State {
	return State{
		Effectors:     append([]Effector(nil), s.Effectors...),
		Targets:       append([]Target(nil), s.Targets...),
		Opportunities: append([][]Opportunity(nil), s.Opportunities...),
	}
}

// RowWriter hands out private copies of opportunity rows for a derived
// state, copying each row at most once.
type RowWriter struct {
	state  *State
	copied []bool
}

// NewRowWriter prepares copy-on-write access to the rows of s.
// s must come from Derive (or Clone) so its outer row slice is private.
func NewRowWriter(s *State) *RowWriter {
	return &RowWriter{state: s, copied: make([]bool, len(s.Opportunities))}
}

// Row returns a writable row for effector e.
func (w *RowWriter) Row(e int) []Opportunity {
	if !w.copied[e] {
		w.state.Opportunities[e] = append([]Opportunity(nil), w.state.Opportunities[e]...)
		w.copied[e] = true
	}
	return w.state.Opportunities[e]
}
