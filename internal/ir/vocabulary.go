package ir

// RelationPair names two relation types, e.g. "left of" and "right of".
// For Vocabulary.Pairs the two are mutual converses; for Vocabulary.Mirrors
// the pair is directed from First (source) to Second (target).
type RelationPair struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// Vocabulary is the compiled form of a relation vocabulary file.
//
// Rules are registered in field order: pairs, mirrors, symmetric,
// transitive. Seed facts are inserted after all rules.
type Vocabulary struct {
	Name       string         `json:"name"`
	Pairs      []RelationPair `json:"pairs,omitempty"`
	Mirrors    []RelationPair `json:"mirrors,omitempty"`
	Symmetric  []string       `json:"symmetric,omitempty"`
	Transitive []string       `json:"transitive,omitempty"`
	Facts      []Fact         `json:"facts,omitempty"`
}
