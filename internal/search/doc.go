// Package search implements the best-first (A*) solver for JFA problems.
//
// The engine minimizes the priority value: the target value left unclaimed
// along a path, minus an admissible estimate of what can still be claimed.
// The first terminal node whose priority is confirmed against its parent is
// optimal.
//
// ARCHITECTURE:
//
// Node Arena:
// Every node of a search run lives in one slice owned by that run. Parent
// links are arena indices, so the search tree has no pointer cycles and
// path reconstruction is an index walk.
//
// Frontier:
// A binary min-heap of arena indices keyed by priority. Equal priorities
// pop in insertion order, which keeps runs reproducible.
//
// Duplicate Tracking:
// Open and closed membership is hashed by model.StateKey and confirmed with
// model.State.Equal, so two nodes are duplicates iff their matrices are
// element-wise equal. A child whose state is already open or closed is
// discarded and counted as a duplicate.
//
// Goal Confirmation:
// A popped terminal node is accepted only if its priority equals
// parent.priority - reward. Otherwise its priority is corrected and it is
// pushed back once. A second mismatch is reported as a RevalidationError.
//
// The reward accumulated on a path equals the drop in total target value,
// so it depends only on the state reached. Closed priorities are never
// revisited and a terminal node's parent is closed before the node exists,
// which bounds re-validation to a single reinsertion per node.
//
// The engine is single-threaded. Search checks its context every few
// thousand pops so batch tooling can abandon a run.
package search
