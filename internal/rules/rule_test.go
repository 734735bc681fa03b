package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/prodsys/internal/ir"
	"github.com/roach88/prodsys/internal/memory"
)

func seed(t *testing.T, facts ...ir.Fact) *memory.FactStore {
	t.Helper()
	s := memory.NewFactStore()
	for _, f := range facts {
		require.True(t, s.Insert(f), "seed fact %s inserted twice", f)
	}
	return s
}

// fixpoint runs rule until it stops producing facts and returns the number
// of calls that made progress.
func fixpoint(rule Rule, s Store) int {
	productive := 0
	for Process(rule, s) > 0 {
		productive++
	}
	return productive
}

func TestMirror_DerivesConverse(t *testing.T) {
	s := seed(t,
		ir.MustFact("left of", "fork", "plate"),
		ir.MustFact("left of", "plate", "knife"),
	)

	added := Process(Mirror{Source: "left of", Target: "right of"}, s)

	assert.Equal(t, 2, added)
	assert.True(t, s.Contains(ir.MustFact("right of", "plate", "fork")))
	assert.True(t, s.Contains(ir.MustFact("right of", "knife", "plate")))
}

func TestMirror_SecondPassAddsNothing(t *testing.T) {
	s := seed(t, ir.MustFact("left of", "fork", "plate"))
	m := Mirror{Source: "left of", Target: "right of"}

	require.Equal(t, 1, Process(m, s))
	assert.Equal(t, 0, Process(m, s))
	assert.Equal(t, 2, s.Len())
}

func TestMirror_Symmetric(t *testing.T) {
	s := seed(t, ir.MustFact("next to", "fork", "plate"))
	m := Mirror{Source: "next to", Target: "next to"}

	assert.Equal(t, 1, Process(m, s))
	assert.True(t, s.Contains(ir.MustFact("next to", "plate", "fork")))
	assert.Equal(t, 0, Process(m, s), "the mirrored fact mirrors back onto the original")
}

func TestMirror_IgnoresOtherTypes(t *testing.T) {
	s := seed(t, ir.MustFact("above of", "napkin", "plate"))

	assert.Equal(t, 0, Process(Mirror{Source: "left of", Target: "right of"}, s))
	assert.Equal(t, 1, s.Len())
}

func TestTransitive_ChainClosure(t *testing.T) {
	s := seed(t,
		ir.MustFact("left of", "a", "b"),
		ir.MustFact("left of", "b", "c"),
		ir.MustFact("left of", "c", "d"),
	)
	r := Transitive{Type: "left of"}

	assert.Equal(t, 2, Process(r, s), "first pass closes one hop: a->c, b->d")
	assert.Equal(t, 1, Process(r, s), "second pass reaches a->d")
	assert.Equal(t, 0, Process(r, s))

	for _, f := range []ir.Fact{
		ir.MustFact("left of", "a", "c"),
		ir.MustFact("left of", "b", "d"),
		ir.MustFact("left of", "a", "d"),
	} {
		assert.True(t, s.Contains(f), "missing %s", f)
	}
	assert.Equal(t, 6, s.Len())
}

func TestTransitive_TwoCycleGuard(t *testing.T) {
	s := seed(t,
		ir.MustFact("left of", "a", "b"),
		ir.MustFact("left of", "b", "a"),
	)

	assert.Equal(t, 0, Process(Transitive{Type: "left of"}, s))
	assert.False(t, s.Contains(ir.MustFact("left of", "a", "a")))
	assert.False(t, s.Contains(ir.MustFact("left of", "b", "b")))
}

func TestTransitive_LongerCycleTerminates(t *testing.T) {
	s := seed(t,
		ir.MustFact("left of", "a", "b"),
		ir.MustFact("left of", "b", "c"),
		ir.MustFact("left of", "c", "a"),
	)

	fixpoint(Transitive{Type: "left of"}, s)

	// Every ordered pair of distinct entities, and nothing else.
	assert.Equal(t, 6, s.Len())
	for _, e := range []string{"a", "b", "c"} {
		assert.False(t, s.Contains(ir.MustFact("left of", e, e)))
	}
}

func TestTransitive_IgnoresOtherTypesAtJoin(t *testing.T) {
	s := seed(t,
		ir.MustFact("left of", "fork", "plate"),
		ir.MustFact("above of", "plate", "napkin"),
	)

	assert.Equal(t, 0, Process(Transitive{Type: "left of"}, s))
}

func TestTransitive_JoinRequiresSharedSubject(t *testing.T) {
	// fork and spoon are both left of plate; nothing relates them.
	s := seed(t,
		ir.MustFact("left of", "fork", "plate"),
		ir.MustFact("left of", "spoon", "plate"),
	)

	assert.Equal(t, 0, Process(Transitive{Type: "left of"}, s))
}

func TestRuleNamesAndConditions(t *testing.T) {
	m := Mirror{Source: "left of", Target: "right of"}
	tr := Transitive{Type: "left of"}

	assert.Equal(t, "mirror(left of->right of)", m.Name())
	assert.Equal(t, []string{"left of"}, m.Conditions())
	assert.Equal(t, "transitive(left of)", tr.Name())
	assert.Equal(t, []string{"left of"}, tr.Conditions())
}

func TestRuleConstructorsValidate(t *testing.T) {
	_, err := NewMirror("", "right of")
	assert.True(t, ir.IsInvalidArgument(err))

	_, err = NewMirror("left of", " ")
	assert.True(t, ir.IsInvalidArgument(err))

	_, err = NewTransitive("")
	assert.True(t, ir.IsInvalidArgument(err))

	m, err := NewMirror(" left of ", "right of")
	require.NoError(t, err)
	assert.Equal(t, Mirror{Source: "left of", Target: "right of"}, m)
}
