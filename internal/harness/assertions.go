package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/prodsys/internal/engine"
	"github.com/roach88/prodsys/internal/ir"
)

// AssertionError is returned when an expectation or assertion fails.
type AssertionError struct {
	Type       string    // Assertion type, or "query" for query expectations
	Expected   string    // Human-readable expected outcome
	Actual     string    // Human-readable actual outcome
	Conditions []ir.Fact // Fixpoint facts, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Conditions) > 0 {
		fmt.Fprintf(&buf, "\nConditions:\n")
		for i, f := range e.Conditions {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, f)
		}
	}
	return buf.String()
}

// checkExpect validates one query run against its expectation.
func checkExpect(qr QueryResult, want Expect) error {
	label := fmt.Sprintf("%s(%s, %s)", qr.Strategy, qr.Subject, qr.Object)
	types := relationTypes(qr.Facts)

	if want.Empty && len(qr.Facts) > 0 {
		return &AssertionError{
			Type:     "query",
			Expected: label + " is empty",
			Actual:   formatFacts(qr.Facts),
		}
	}
	for _, t := range want.Contains {
		if !slices.Contains(types, t) {
			return &AssertionError{
				Type:     "query",
				Expected: fmt.Sprintf("%s contains %q", label, t),
				Actual:   formatFacts(qr.Facts),
			}
		}
	}
	for _, t := range want.Excludes {
		if slices.Contains(types, t) {
			return &AssertionError{
				Type:     "query",
				Expected: fmt.Sprintf("%s excludes %q", label, t),
				Actual:   formatFacts(qr.Facts),
			}
		}
	}
	return nil
}

// checkAssertion evaluates a against closure, an engine already run to
// its full fixpoint.
func (h *Harness) checkAssertion(a Assertion, closure *engine.Engine) error {
	conditions := closure.ListConditions()

	switch a.Type {
	case AssertConditionPresent, AssertConditionAbsent:
		f, err := ir.NewFact(a.Fact.Type, a.Fact.Subject, a.Fact.Object)
		if err != nil {
			return fmt.Errorf("%s: %w", a.Type, err)
		}
		want := a.Type == AssertConditionPresent
		if closure.Facts().Contains(f) != want {
			verb := "present"
			if !want {
				verb = "absent"
			}
			return &AssertionError{
				Type:       a.Type,
				Expected:   fmt.Sprintf("%s %s", f, verb),
				Actual:     fmt.Sprintf("%d conditions", len(conditions)),
				Conditions: conditions,
			}
		}

	case AssertConditionCount:
		relation, err := ir.NormalizeName("relation", a.Relation)
		if err != nil {
			return fmt.Errorf("%s: %w", a.Type, err)
		}
		got := len(closure.Facts().FactsOfType(relation))
		if got != a.Count {
			return &AssertionError{
				Type:       a.Type,
				Expected:   fmt.Sprintf("%d %q conditions", a.Count, relation),
				Actual:     fmt.Sprintf("%d", got),
				Conditions: conditions,
			}
		}

	case AssertStrategiesAgree:
		return h.checkStrategiesAgree(closure)

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// checkStrategiesAgree compares the fast query of every ordered pair of
// seeded entities, each on a fresh engine, with the full fixpoint.
func (h *Harness) checkStrategiesAgree(closure *engine.Engine) error {
	entities := h.seedEntities()
	for _, a := range entities {
		for _, b := range entities {
			fast, err := h.NewEngine()
			if err != nil {
				return err
			}
			got := fast.QueryFast(a, b)
			want := closure.QueryExact(a, b)
			if !sameFacts(got, want) {
				return &AssertionError{
					Type:     AssertStrategiesAgree,
					Expected: fmt.Sprintf("full(%s, %s) = %s", a, b, formatFacts(want)),
					Actual:   fmt.Sprintf("fast(%s, %s) = %s", a, b, formatFacts(got)),
				}
			}
		}
	}
	return nil
}

// seedEntities lists every entity a seed fact mentions, in first-seen
// order. Vocabulary seeds count.
func (h *Harness) seedEntities() []string {
	e, err := h.NewEngine()
	if err != nil {
		return nil
	}
	var out []string
	for _, f := range e.Facts().All() {
		for _, name := range []string{f.Subject, f.Object} {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}

// sameFacts compares two results as sets.
func sameFacts(a, b []ir.Fact) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[ir.Fact]struct{}, len(a))
	for _, f := range a {
		seen[f] = struct{}{}
	}
	for _, f := range b {
		if _, ok := seen[f]; !ok {
			return false
		}
	}
	return true
}

func relationTypes(facts []ir.Fact) []string {
	var types []string
	for _, f := range facts {
		if !slices.Contains(types, f.Type) {
			types = append(types, f.Type)
		}
	}
	return types
}

func formatFacts(facts []ir.Fact) string {
	if len(facts) == 0 {
		return "[]"
	}
	parts := make([]string, len(facts))
	for i, f := range facts {
		parts[i] = f.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
