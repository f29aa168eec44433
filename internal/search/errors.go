package search

import (
	"errors"
	"fmt"
)

// QuotaExceededError is returned when a search would expand more nodes
// than the engine's expansion limit allows. Accepting a terminal node is
// not an expansion.
//
// The limit bounds runaway searches on large instances. Statistics gathered
// up to the limit are still returned with the error.
type QuotaExceededError struct {
	Expansions int // Number of expansions performed
	Limit      int // Maximum allowed expansions
}

// Error implements the error interface.
func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("search exceeded expansion quota: %d expansions > %d limit",
		e.Expansions, e.Limit)
}

// RevalidationError reports a terminal node whose priority still disagreed
// with its parent after one correction. It indicates a transition function
// or heuristic that is not deterministic.
type RevalidationError struct {
	Stored   float64 // Priority carried by the node after its correction
	Expected float64 // parent.priority - reward at the second check
	Depth    int     // Number of actions from the root
}

// Error implements the error interface.
func (e *RevalidationError) Error() string {
	return fmt.Sprintf("terminal node at depth %d failed re-validation twice: stored %v, expected %v",
		e.Depth, e.Stored, e.Expected)
}

// IsQuotaError returns true if the error is a QuotaExceededError.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}

// IsRevalidationError returns true if the error is a RevalidationError.
// Uses errors.As to handle wrapped errors.
func IsRevalidationError(err error) bool {
	var re *RevalidationError
	return errors.As(err, &re)
}
