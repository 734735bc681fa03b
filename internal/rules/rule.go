package rules

import (
	"fmt"

	"github.com/roach88/prodsys/internal/ir"
)

// Store is the part of a fact store rules read and write.
// memory.FactStore implements it; the engine wraps it to observe inserts.
type Store interface {
	FactsOfType(relationType string) []ir.Fact
	FactsMentioning(entity string) []ir.Fact
	Insert(f ir.Fact) bool
}

// Rule is a unit of inference over a Store.
//
// The set of implementations is closed (Mirror, Transitive). Rule values
// are comparable, so two rules with the same parameters are the same rule.
type Rule interface {
	// Conditions returns the relation types whose facts can trigger the rule.
	Conditions() []string

	// Name returns a short stable label, e.g. "transitive(left of)".
	Name() string

	sealed()
}

// Mirror derives (Target, b, a) from every (Source, a, b).
// It models a converse pair such as "left of"/"right of"; with
// Source == Target it models a symmetric relation.
type Mirror struct {
	Source string
	Target string
}

// NewMirror validates both relation types and returns the rule.
func NewMirror(source, target string) (Mirror, error) {
	s, err := ir.NormalizeName("source", source)
	if err != nil {
		return Mirror{}, err
	}
	t, err := ir.NormalizeName("target", target)
	if err != nil {
		return Mirror{}, err
	}
	return Mirror{Source: s, Target: t}, nil
}

// Conditions implements Rule.
func (m Mirror) Conditions() []string { return []string{m.Source} }

// Name implements Rule.
func (m Mirror) Name() string { return fmt.Sprintf("mirror(%s->%s)", m.Source, m.Target) }

func (Mirror) sealed() {}

// Transitive derives (Type, a, c) from every chain (Type, a, b), (Type, b, c)
// with c != a.
type Transitive struct {
	Type string
}

// NewTransitive validates the relation type and returns the rule.
func NewTransitive(relationType string) (Transitive, error) {
	t, err := ir.NormalizeName("type", relationType)
	if err != nil {
		return Transitive{}, err
	}
	return Transitive{Type: t}, nil
}

// Conditions implements Rule.
func (r Transitive) Conditions() []string { return []string{r.Type} }

// Name implements Rule.
func (r Transitive) Name() string { return fmt.Sprintf("transitive(%s)", r.Type) }

func (Transitive) sealed() {}

// Process applies rule to store once and returns how many derived facts
// were actually new. A zero return means the rule made no progress.
//
// Each rule iterates a snapshot of its trigger facts; facts it derives
// during this call are picked up on the next call.
func Process(rule Rule, store Store) int {
	switch r := rule.(type) {
	case Mirror:
		return processMirror(r, store)
	case Transitive:
		return processTransitive(r, store)
	default:
		panic(fmt.Sprintf("rules: unknown rule variant %T", rule))
	}
}

func processMirror(r Mirror, store Store) int {
	added := 0
	for _, f := range store.FactsOfType(r.Source) {
		if store.Insert(ir.Fact{Type: r.Target, Subject: f.Object, Object: f.Subject}) {
			added++
		}
	}
	return added
}

// processTransitive closes chains one hop at a time. The c != a guard keeps
// it from ever deriving (T, a, a); a self-relation can only come from a seed.
// Termination rests on deduplication, not cycle detection.
func processTransitive(r Transitive, store Store) int {
	added := 0
	for _, ab := range store.FactsOfType(r.Type) {
		a, b := ab.Subject, ab.Object
		for _, bc := range store.FactsMentioning(b) {
			if bc.Type != r.Type || bc.Subject != b {
				continue
			}
			c := bc.Object
			if c == a {
				continue
			}
			if store.Insert(ir.Fact{Type: r.Type, Subject: a, Object: c}) {
				added++
			}
		}
	}
	return added
}
