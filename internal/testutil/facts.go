package testutil

import "github.com/roach88/prodsys/internal/ir"

// Chain returns the facts relating each entity to the next one:
// Chain("left of", "a", "b", "c") is left of(a, b), left of(b, c).
func Chain(relationType string, entities ...string) []ir.Fact {
	var facts []ir.Fact
	for i := 0; i+1 < len(entities); i++ {
		facts = append(facts, ir.MustFact(relationType, entities[i], entities[i+1]))
	}
	return facts
}

// Triples builds facts from {type, subject, object} triples.
func Triples(triples ...[3]string) []ir.Fact {
	facts := make([]ir.Fact, 0, len(triples))
	for _, t := range triples {
		facts = append(facts, ir.MustFact(t[0], t[1], t[2]))
	}
	return facts
}
