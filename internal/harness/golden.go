package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/prodsys/internal/ir"
)

// Snapshot renders a scenario result as canonical JSON: the scenario name,
// its session, each query run with its facts and trace, and the fixpoint.
// Two runs of the same scenario produce identical bytes.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	queries := make([]any, len(result.Queries))
	for i, qr := range result.Queries {
		trace := make([]any, len(qr.Trace))
		for j, ev := range qr.Trace {
			trace[j] = ev.CanonicalMap()
		}
		queries[i] = map[string]any{
			"subject":  qr.Subject,
			"object":   qr.Object,
			"strategy": qr.Strategy,
			"result":   qr.Facts,
			"trace":    trace,
		}
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario":   scenario.Name,
		"session":    SessionID(scenario),
		"queries":    queries,
		"conditions": result.Conditions,
	})
}

// RunWithGolden runs a scenario and compares its snapshot with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario, result)
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
