package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/jfa/internal/dataset"
	"github.com/roach88/jfa/internal/model"
)

// Scenario defines a conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Problem is the inline instance. Exactly one of Problem and
	// ProblemFile must be set.
	Problem *model.Problem `yaml:"problem,omitempty"`

	// ProblemFile is a problem path relative to the scenario file.
	ProblemFile string `yaml:"problem_file,omitempty"`

	// Solvers lists registry names. Defaults to every registered solver.
	Solvers []string `yaml:"solvers,omitempty"`

	// Seed seeds the randomized solvers. Defaults to 1.
	Seed uint64 `yaml:"seed,omitempty"`

	// Tolerance bounds float comparisons. Defaults to 1e-9.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one property of the solver outcomes.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Solver restricts the assertion to one solver display name.
	Solver string `yaml:"solver,omitempty"`

	// Value is the expected reward (claimed, remaining).
	Value float64 `yaml:"value,omitempty"`

	// Actions is the expected sequence (actions).
	Actions []model.Action `yaml:"actions,omitempty"`

	// Ordered requires Actions to match in order.
	Ordered bool `yaml:"ordered,omitempty"`

	// Count is the expansion bound (max_expansions).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertOptimal       = "optimal"
	AssertBounded       = "bounded"
	AssertClaimed       = "claimed"
	AssertRemaining     = "remaining"
	AssertActions       = "actions"
	AssertMaxExpansions = "max_expansions"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A problem_file is resolved relative to the scenario and loaded.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if scenario.ProblemFile != "" {
		problemPath := scenario.ProblemFile
		if !filepath.IsAbs(problemPath) {
			problemPath = filepath.Join(filepath.Dir(path), problemPath)
		}
		p, err := dataset.Load(problemPath)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		scenario.Problem = p
	}
	if scenario.Problem.Name == "" {
		scenario.Problem.Name = scenario.Name
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if (s.Problem == nil) == (s.ProblemFile == "") {
		return fmt.Errorf("exactly one of problem and problem_file is required")
	}

	if s.Problem != nil {
		if err := s.Problem.Validate(); err != nil {
			return fmt.Errorf("problem: %w", err)
		}
	}

	if s.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}

	return nil
}

// validateAssertion checks type-specific required fields.
func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertOptimal, AssertBounded, AssertClaimed, AssertRemaining:
		return nil
	case AssertActions:
		if a.Actions == nil {
			return fmt.Errorf("actions is required for %s", a.Type)
		}
		return nil
	case AssertMaxExpansions:
		if a.Count <= 0 {
			return fmt.Errorf("count must be positive for %s", a.Type)
		}
		return nil
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}
