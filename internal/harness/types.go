package harness

import (
	"github.com/roach88/prodsys/internal/engine"
	"github.com/roach88/prodsys/internal/ir"
)

// QueryResult is one query run under one strategy.
type QueryResult struct {
	Subject  string       `json:"subject"`
	Object   string       `json:"object"`
	Strategy string       `json:"strategy"`
	Facts    []ir.Fact    `json:"facts"`
	Stats    engine.Stats `json:"-"`

	// Trace holds every event of the query's engine, seeds included.
	Trace []ir.Event `json:"trace"`
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Queries holds one entry per query and strategy, in scenario order;
	// a "both" query contributes a fast and a full entry.
	Queries []QueryResult `json:"queries"`

	// Conditions is the full fixpoint of the scenario, grouped by type.
	Conditions []ir.Fact `json:"conditions"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Queries:    []QueryResult{},
		Conditions: []ir.Fact{},
		Errors:     []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
