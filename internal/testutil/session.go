package testutil

// DefaultSession is the session id used when a scenario names none.
const DefaultSession = "test-session-default"

// FixedSessionGenerator returns the same session id every time, so every
// engine a scenario builds stamps identical events.
//
// Unlike engine.FixedGenerator, which hands out ids in sequence, this
// generator never runs out.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator returns a generator for id, or for
// DefaultSession if id is empty.
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSession
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session id.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
