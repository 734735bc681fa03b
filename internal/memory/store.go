package memory

import (
	"slices"

	"github.com/roach88/prodsys/internal/ir"
)

// FactStore is the indexed, append-only fact set of one session.
type FactStore struct {
	facts    []ir.Fact
	byKey    map[ir.Fact]struct{}
	byPair   map[ir.PairKey][]ir.Fact
	byEntity map[string][]ir.Fact
	byType   map[string][]ir.Fact
	types    []string // Relation types in first-seen order
}

// NewFactStore creates an empty store.
func NewFactStore() *FactStore {
	return &FactStore{
		facts:    make([]ir.Fact, 0, 64),
		byKey:    make(map[ir.Fact]struct{}),
		byPair:   make(map[ir.PairKey][]ir.Fact),
		byEntity: make(map[string][]ir.Fact),
		byType:   make(map[string][]ir.Fact),
	}
}

// Insert adds f to the store and every index.
//
// Returns false without touching anything if a structurally identical
// fact is already present. This is the only mutation entry point.
func (s *FactStore) Insert(f ir.Fact) bool {
	if _, ok := s.byKey[f]; ok {
		return false
	}

	s.byKey[f] = struct{}{}
	s.facts = append(s.facts, f)
	s.byPair[f.Pair()] = append(s.byPair[f.Pair()], f)

	s.byEntity[f.Subject] = append(s.byEntity[f.Subject], f)
	if f.Object != f.Subject {
		s.byEntity[f.Object] = append(s.byEntity[f.Object], f)
	}

	if _, seen := s.byType[f.Type]; !seen {
		s.types = append(s.types, f.Type)
	}
	s.byType[f.Type] = append(s.byType[f.Type], f)

	return true
}

// Contains reports whether f is in the store.
func (s *FactStore) Contains(f ir.Fact) bool {
	_, ok := s.byKey[f]
	return ok
}

// Len returns the number of facts in the store.
func (s *FactStore) Len() int {
	return len(s.facts)
}

// All returns every fact in insertion order.
func (s *FactStore) All() []ir.Fact {
	return clone(s.facts)
}

// FactsOfType returns the facts of one relation type in insertion order.
// Returns an empty slice for an unseen type.
func (s *FactStore) FactsOfType(relationType string) []ir.Fact {
	return clone(s.byType[relationType])
}

// FactsBetween returns the facts whose subject is subject and whose object
// is object. The lookup is direction-sensitive.
func (s *FactStore) FactsBetween(subject, object string) []ir.Fact {
	return clone(s.byPair[ir.PairKey{Subject: subject, Object: object}])
}

// FactsMentioning returns the facts naming entity as subject or object.
// Returns an empty slice for an unseen entity.
func (s *FactStore) FactsMentioning(entity string) []ir.Fact {
	return clone(s.byEntity[entity])
}

// Types returns the relation types present, in first-seen order.
func (s *FactStore) Types() []string {
	return slices.Clone(s.types)
}

// Conditions returns every fact grouped by relation type.
//
// Groups appear in the order their type was first seen; facts keep
// insertion order within a group. This is the dump a host prints when it
// wants to show everything the session currently believes.
func (s *FactStore) Conditions() []ir.Fact {
	out := make([]ir.Fact, 0, len(s.facts))
	for _, t := range s.types {
		out = append(out, s.byType[t]...)
	}
	return out
}

// clone returns a copy of facts that is never nil, so callers can range,
// append, or compare against empty without special cases.
func clone(facts []ir.Fact) []ir.Fact {
	out := make([]ir.Fact, len(facts))
	copy(out, facts)
	return out
}
