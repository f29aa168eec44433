// Package harness runs conformance scenarios against the solvers.
//
// A scenario pairs a small problem with expectations on what each solver
// returns. Scenarios live in YAML files so new edge cases can be added
// without writing Go.
//
// # Scenario Format
//
//	name: disjoint_pairs
//	description: "Two independent engagements, both taken"
//	problem:
//	  effectors: [{capacity: 1}, {capacity: 1}]
//	  targets: [{value: 10}, {value: 20}]
//	  opportunities:
//	    - [{selectable: true, p_success: 0.8}, {selectable: false, p_success: 0.3}]
//	    - [{selectable: false, p_success: 0.6}, {selectable: true, p_success: 0.5}]
//	solvers: [astar, ucs, bnb, greedy]
//	assertions:
//	  - type: optimal
//	  - type: claimed
//	    value: 18
//	  - type: actions
//	    solver: AStar
//	    actions: [{effector: 0, target: 0}, {effector: 1, target: 1}]
//
// Instead of an inline problem, problem_file names a JSON or YAML problem
// relative to the scenario file.
//
// # Assertion Types
//
//   - optimal: claimed reward equals the Branch and Bound optimum
//   - bounded: claimed reward does not exceed the optimum
//   - claimed: claimed reward equals value
//   - remaining: unclaimed value equals value
//   - actions: the action sequence equals actions (as a set unless ordered)
//   - max_expansions: an exact solver expanded at most count nodes
//
// Every assertion applies to all solvers unless solver names one by its
// display name.
//
// # Deterministic Testing
//
// Solvers run with a fixed seed and outcomes exclude runtimes, so outcome
// snapshots compare byte for byte against golden files under
// testdata/golden.
package harness
