package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/prodsys/internal/ir"
)

func TestFixedSessionGenerator(t *testing.T) {
	gen := NewFixedSessionGenerator("scenario-1")
	assert.Equal(t, "scenario-1", gen.Generate())
	assert.Equal(t, "scenario-1", gen.Generate())

	assert.Equal(t, DefaultSession, NewFixedSessionGenerator("").Generate())
}

func TestChain(t *testing.T) {
	assert.Equal(t, []ir.Fact{
		ir.MustFact("left of", "cat", "pizza"),
		ir.MustFact("left of", "pizza", "knife"),
	}, Chain("left of", "cat", "pizza", "knife"))

	assert.Empty(t, Chain("left of", "cat"))
}

func TestTriples(t *testing.T) {
	assert.Equal(t, []ir.Fact{ir.MustFact("above of", "napkin", "plate")},
		Triples([3]string{"above of", "napkin", "plate"}))
}
