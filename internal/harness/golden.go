package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures the solver outcomes of a scenario. Runtimes are
// excluded so snapshots are stable across machines.
type Snapshot struct {
	ScenarioName string    `json:"scenario_name"`
	Optimum      float64   `json:"optimum"`
	Outcomes     []Outcome `json:"outcomes"`
}

// MarshalSnapshot renders the snapshot of a result as indented JSON.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	data, err := json.MarshalIndent(Snapshot{
		ScenarioName: scenarioName,
		Optimum:      result.Optimum,
		Outcomes:     result.Outcomes,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares the outcomes against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if outcomes don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
