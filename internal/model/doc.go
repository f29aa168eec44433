// Package model defines the problem instance and search state for the
// joint fires assignment (JFA) domain.
//
// A State is the triple (Effectors, Targets, Opportunities). Opportunities
// are stored row-major: one row per effector, one column per target.
//
// # Immutability
//
// States handed to the search are never mutated. Transitions produce a new
// State that copies the effector and target slices and only the opportunity
// rows that change; untouched rows are shared with the parent state. Code
// that edits rows of a derived state goes through a RowWriter.
//
// # Identity
//
// Two states are equal iff all three matrices are element-wise equal,
// regardless of the action path that produced them. State.Key returns a
// content hash over a canonical encoding of the matrices; equal states
// always have equal keys.
package model
