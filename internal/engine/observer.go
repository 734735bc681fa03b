package engine

import (
	"github.com/roach88/prodsys/internal/ir"
	"github.com/roach88/prodsys/internal/rules"
)

// Observer receives every event an Engine emits, in seq order.
// Observe is called synchronously from the engine's goroutine.
type Observer interface {
	Observe(ev ir.Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ev ir.Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev ir.Event) { f(ev) }

// derivingStore is the rules.Store a rule sees while firing. It forwards to
// the session's fact store and emits fact_derived for every new fact.
type derivingStore struct {
	engine   *Engine
	strategy ir.Strategy
	round    int
	rule     string
}

var _ rules.Store = (*derivingStore)(nil)

func (s *derivingStore) FactsOfType(relationType string) []ir.Fact {
	return s.engine.facts.FactsOfType(relationType)
}

func (s *derivingStore) FactsMentioning(entity string) []ir.Fact {
	return s.engine.facts.FactsMentioning(entity)
}

func (s *derivingStore) Insert(f ir.Fact) bool {
	if !s.engine.facts.Insert(f) {
		return false
	}
	derived := f
	s.engine.emit(ir.Event{
		Kind:     ir.EventFactDerived,
		Strategy: s.strategy,
		Round:    s.round,
		Rule:     s.rule,
		Fact:     &derived,
	})
	return true
}
