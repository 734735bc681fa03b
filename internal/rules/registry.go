package rules

import (
	"slices"

	"github.com/roach88/prodsys/internal/ir"
)

// Registry owns the ordered rule sequence and the index from relation type
// to the rules that type can trigger.
//
// INVARIANTS:
//   - Rules() order is registration order and never changes
//   - a rule appears at most once in any TriggeredBy bucket
type Registry struct {
	rules     []Rule
	triggered map[string][]Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		triggered: make(map[string][]Rule),
	}
}

// Register appends r and indexes it under each of its conditions.
func (reg *Registry) Register(r Rule) {
	reg.rules = append(reg.rules, r)
	for _, t := range r.Conditions() {
		if slices.Contains(reg.triggered[t], r) {
			continue
		}
		reg.triggered[t] = append(reg.triggered[t], r)
	}
}

// Rules returns every registered rule in registration order.
func (reg *Registry) Rules() []Rule {
	return slices.Clone(reg.rules)
}

// Len returns the number of registered rules.
func (reg *Registry) Len() int {
	return len(reg.rules)
}

// TriggeredBy returns the rules a fact of relationType can trigger, in
// registration order. Returns an empty slice if none.
func (reg *Registry) TriggeredBy(relationType string) []Rule {
	out := make([]Rule, len(reg.triggered[relationType]))
	copy(out, reg.triggered[relationType])
	return out
}

// RegisterRelationPair registers the four standard rules for two relation
// types that are each other's converse:
//
//	Mirror(a, b), Mirror(b, a), Transitive(a), Transitive(b)
//
// It may be called once per vocabulary within a session.
func RegisterRelationPair(reg *Registry, a, b string) error {
	pair, err := pairRules(a, b)
	if err != nil {
		return err
	}
	for _, r := range pair {
		reg.Register(r)
	}
	return nil
}

// RegisterSymmetric registers Mirror(t, t).
func RegisterSymmetric(reg *Registry, t string) error {
	m, err := NewMirror(t, t)
	if err != nil {
		return err
	}
	reg.Register(m)
	return nil
}

// RegisterVocabulary registers every rule v declares, in the order pairs,
// mirrors, symmetric, transitive. Nothing is registered if any name is
// invalid. Seed facts are left to the caller.
func RegisterVocabulary(reg *Registry, v ir.Vocabulary) error {
	var pending []Rule
	for _, p := range v.Pairs {
		pair, err := pairRules(p.First, p.Second)
		if err != nil {
			return err
		}
		pending = append(pending, pair...)
	}
	for _, p := range v.Mirrors {
		m, err := NewMirror(p.First, p.Second)
		if err != nil {
			return err
		}
		pending = append(pending, m)
	}
	for _, t := range v.Symmetric {
		m, err := NewMirror(t, t)
		if err != nil {
			return err
		}
		pending = append(pending, m)
	}
	for _, t := range v.Transitive {
		r, err := NewTransitive(t)
		if err != nil {
			return err
		}
		pending = append(pending, r)
	}

	for _, r := range pending {
		reg.Register(r)
	}
	return nil
}

func pairRules(a, b string) ([]Rule, error) {
	ab, err := NewMirror(a, b)
	if err != nil {
		return nil, err
	}
	return []Rule{
		ab,
		Mirror{Source: ab.Target, Target: ab.Source},
		Transitive{Type: ab.Source},
		Transitive{Type: ab.Target},
	}, nil
}
