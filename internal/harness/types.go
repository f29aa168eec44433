package harness

import (
	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/search"
)

// Outcome is one solver's answer to a scenario.
type Outcome struct {
	Solver    string         `json:"solver"`
	Claimed   float64        `json:"claimed"`
	Remaining float64        `json:"remaining"`
	Actions   []model.Action `json:"actions"`
	Stats     *search.Stats  `json:"stats,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: no solver failed and every
	// assertion held.
	Pass bool `json:"pass"`

	// Optimum is the Branch and Bound reference reward.
	Optimum float64 `json:"optimum"`

	Outcomes []Outcome `json:"outcomes"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
