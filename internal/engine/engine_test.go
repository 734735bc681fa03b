package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/prodsys/internal/ir"
	"github.com/roach88/prodsys/internal/rules"
	"github.com/roach88/prodsys/internal/testutil"
)

const (
	leftOf  = "left of"
	rightOf = "right of"
	aboveOf = "above of"
	belowOf = "below of"
)

// newTestEngine returns a session with a fixed id and the given seeds.
func newTestEngine(t *testing.T, seeds ...ir.Fact) *Engine {
	t.Helper()
	e := New(WithSessionGenerator(NewFixedGenerator("test-session")))
	for _, f := range seeds {
		e.Insert(f)
	}
	return e
}

func TestEngine_InsertFact(t *testing.T) {
	e := newTestEngine(t)

	added, err := e.InsertFact(leftOf, "fork", "plate")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = e.InsertFact(" left of", "fork ", "plate")
	require.NoError(t, err)
	assert.False(t, added, "normalized duplicate is not new")

	_, err = e.InsertFact(leftOf, "", "plate")
	assert.True(t, ir.IsInvalidArgument(err))

	assert.Equal(t, 1, e.Facts().Len())
}

func TestEngine_QueryExactDoesNotEvaluate(t *testing.T) {
	e := newTestEngine(t,
		ir.MustFact(leftOf, "fork", "plate"),
		ir.MustFact(leftOf, "plate", "knife"),
	)
	require.NoError(t, e.RegisterRelationPair(leftOf, rightOf))

	assert.Empty(t, e.QueryExact("fork", "knife"))
	assert.NotNil(t, e.QueryExact("fork", "knife"))
	assert.Equal(t, 2, e.Facts().Len())
}

// The four tableware fixtures, run under both strategies on fresh sessions.
func TestEngine_Fixtures(t *testing.T) {
	type query struct {
		a, b string
		want []ir.Fact
	}
	tests := []struct {
		name    string
		seeds   []ir.Fact
		pairs   [][2]string
		extra   []rules.Rule
		queries []query
	}{
		{
			name: "transitive left of",
			seeds: []ir.Fact{
				ir.MustFact(leftOf, "fork", "plate"),
				ir.MustFact(leftOf, "plate", "knife"),
			},
			pairs: [][2]string{{leftOf, rightOf}},
			extra: []rules.Rule{rules.Transitive{Type: leftOf}},
			queries: []query{
				{"fork", "knife", []ir.Fact{ir.MustFact(leftOf, "fork", "knife")}},
				{"knife", "fork", []ir.Fact{ir.MustFact(rightOf, "knife", "fork")}},
			},
		},
		{
			name: "no rule bridges relation types",
			seeds: []ir.Fact{
				ir.MustFact(leftOf, "fork", "plate"),
				ir.MustFact(aboveOf, "plate", "napkin"),
			},
			pairs: [][2]string{{leftOf, rightOf}, {aboveOf, belowOf}},
			queries: []query{
				{"fork", "napkin", nil},
				{"napkin", "plate", []ir.Fact{ir.MustFact(belowOf, "napkin", "plate")}},
			},
		},
		{
			name: "shared object relates nothing",
			seeds: []ir.Fact{
				ir.MustFact(leftOf, "fork", "plate"),
				ir.MustFact(leftOf, "spoon", "plate"),
			},
			pairs: [][2]string{{leftOf, rightOf}},
			queries: []query{
				{"fork", "spoon", nil},
				{"spoon", "fork", nil},
			},
		},
		{
			name: "five hop chain",
			seeds: testutil.Chain(leftOf, "cat", "pizza", "knife", "spoon", "fork", "plate"),
			pairs: [][2]string{{leftOf, rightOf}},
			queries: []query{
				{"cat", "plate", []ir.Fact{ir.MustFact(leftOf, "cat", "plate")}},
				// plate is not left of cat; only the converse holds.
				{"plate", "cat", []ir.Fact{ir.MustFact(rightOf, "plate", "cat")}},
			},
		},
	}

	for _, tt := range tests {
		for _, strategy := range []ir.Strategy{ir.StrategyFull, ir.StrategyRelevant} {
			t.Run(fmt.Sprintf("%s/%s", tt.name, strategy), func(t *testing.T) {
				for _, q := range tt.queries {
					e := newTestEngine(t, tt.seeds...)
					for _, p := range tt.pairs {
						require.NoError(t, e.RegisterRelationPair(p[0], p[1]))
					}
					for _, r := range tt.extra {
						e.RegisterRule(r)
					}

					var got []ir.Fact
					if strategy == ir.StrategyFull {
						got = e.Query(q.a, q.b)
					} else {
						got = e.QueryFast(q.a, q.b)
					}

					assert.ElementsMatch(t, q.want, got, "query(%s, %s)", q.a, q.b)
				}
			})
		}
	}
}

func TestEngine_FiveHopClosure(t *testing.T) {
	chain := []string{"cat", "pizza", "knife", "spoon", "fork", "plate"}
	e := newTestEngine(t)
	for i := 0; i+1 < len(chain); i++ {
		_, err := e.InsertFact(leftOf, chain[i], chain[i+1])
		require.NoError(t, err)
	}
	require.NoError(t, e.RegisterRelationPair(leftOf, rightOf))

	st := e.RunFull()

	// 15 ordered pairs along the chain, in each direction.
	assert.Len(t, e.Facts().FactsOfType(leftOf), 15)
	assert.Len(t, e.Facts().FactsOfType(rightOf), 15)
	assert.Equal(t, 25, st.Derived)
	for i := range chain {
		for j := i + 1; j < len(chain); j++ {
			assert.True(t, e.Facts().Contains(ir.MustFact(leftOf, chain[i], chain[j])))
			assert.True(t, e.Facts().Contains(ir.MustFact(rightOf, chain[j], chain[i])))
		}
	}
}

func TestEngine_RunFullIsIdempotent(t *testing.T) {
	e := newTestEngine(t,
		ir.MustFact(leftOf, "fork", "plate"),
		ir.MustFact(leftOf, "plate", "knife"),
	)
	require.NoError(t, e.RegisterRelationPair(leftOf, rightOf))

	first := e.RunFull()
	n := e.Facts().Len()
	second := e.RunFull()

	assert.Positive(t, first.Derived)
	assert.Equal(t, 0, second.Derived)
	assert.Equal(t, 1, second.Rounds)
	assert.Equal(t, 4, second.Firings)
	assert.Equal(t, n, e.Facts().Len())
}

func TestEngine_EmptyRegistryReachesFixpointImmediately(t *testing.T) {
	e := newTestEngine(t, ir.MustFact(leftOf, "fork", "plate"))

	assert.Equal(t, Stats{Strategy: ir.StrategyFull, Rounds: 1}, e.RunFull())
	assert.Equal(t, Stats{Strategy: ir.StrategyRelevant, Rounds: 1}, e.RunRelevant("fork", "plate"))
}

func TestEngine_CyclesTerminate(t *testing.T) {
	e := newTestEngine(t, testutil.Triples(
		[3]string{leftOf, "a", "b"},
		[3]string{leftOf, "b", "c"},
		[3]string{leftOf, "c", "a"},
		[3]string{leftOf, "c", "d"},
	)...)
	require.NoError(t, e.RegisterRelationPair(leftOf, rightOf))

	e.RunFull()

	for _, x := range []string{"a", "b", "c"} {
		assert.Empty(t, e.QueryExact(x, x), "no self-relation is derived for %s", x)
		assert.NotEmpty(t, e.QueryExact(x, "d"))
	}
	assert.Equal(t, []ir.Fact{ir.MustFact(rightOf, "d", "a")}, e.QueryExact("d", "a"))
}

func TestEngine_RelevantSkipsUnrelatedVocabularies(t *testing.T) {
	e := newTestEngine(t,
		ir.MustFact(leftOf, "fork", "plate"),
		ir.MustFact(aboveOf, "lamp", "table"),
	)
	require.NoError(t, e.RegisterRelationPair(leftOf, rightOf))
	require.NoError(t, e.RegisterRelationPair(aboveOf, belowOf))

	st := e.RunRelevant("fork", "plate")

	assert.False(t, e.Facts().Contains(ir.MustFact(belowOf, "table", "lamp")),
		"rules for above of never fire for a query about fork and plate")
	assert.True(t, e.Facts().Contains(ir.MustFact(rightOf, "plate", "fork")))
	assert.Equal(t, 1, st.Derived)
}

// For registries built from relation pairs, the relevance-restricted query
// answers exactly what the full fixpoint answers.
func TestEngine_StrategiesAgreeOnPairVocabularies(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	entities := []string{"a", "b", "c", "d", "e", "f"}
	types := []string{leftOf, rightOf, aboveOf, belowOf}

	for trial := 0; trial < 20; trial++ {
		var seeds []ir.Fact
		for i := 0; i < 7; i++ {
			seeds = append(seeds, ir.MustFact(
				types[rng.IntN(len(types))],
				entities[rng.IntN(len(entities))],
				entities[rng.IntN(len(entities))],
			))
		}

		build := func() *Engine {
			e := newTestEngine(t, seeds...)
			require.NoError(t, e.RegisterRelationPair(leftOf, rightOf))
			require.NoError(t, e.RegisterRelationPair(aboveOf, belowOf))
			return e
		}

		full := build()
		full.RunFull()

		for _, x := range entities {
			for _, y := range entities {
				fast := build()
				assert.ElementsMatch(t, full.QueryExact(x, y), fast.QueryFast(x, y),
					"trial %d query(%s, %s) seeds %v", trial, x, y, seeds)
			}
		}
	}
}

// A lone Mirror whose target is another rule's trigger can bridge in a fact
// that never mentions the query entities; the relevant strategy misses it.
func TestEngine_RelevantMissesLoneMirrorBridge(t *testing.T) {
	build := func() *Engine {
		e := newTestEngine(t,
			ir.MustFact(leftOf, "a", "x"),
			ir.MustFact("sits by", "c", "x"),
			ir.MustFact(leftOf, "c", "b"),
		)
		e.RegisterRule(rules.Mirror{Source: "sits by", Target: leftOf})
		e.RegisterRule(rules.Transitive{Type: leftOf})
		return e
	}

	assert.Equal(t, []ir.Fact{ir.MustFact(leftOf, "a", "b")}, build().Query("a", "b"))
	assert.Empty(t, build().QueryFast("a", "b"))
}

func TestEngine_ListConditionsGroupsByType(t *testing.T) {
	e := newTestEngine(t,
		ir.MustFact(leftOf, "fork", "plate"),
		ir.MustFact(aboveOf, "napkin", "plate"),
		ir.MustFact(leftOf, "plate", "knife"),
	)

	assert.Equal(t, []ir.Fact{
		ir.MustFact(leftOf, "fork", "plate"),
		ir.MustFact(leftOf, "plate", "knife"),
		ir.MustFact(aboveOf, "napkin", "plate"),
	}, e.ListConditions())
}

func TestEngine_LoadVocabulary(t *testing.T) {
	e := newTestEngine(t)
	v := ir.Vocabulary{
		Name:  "tableware",
		Pairs: []ir.RelationPair{{First: leftOf, Second: rightOf}},
		Facts: []ir.Fact{
			{Type: leftOf, Subject: "fork", Object: "plate"},
			{Type: leftOf, Subject: "plate", Object: "knife"},
		},
	}

	require.NoError(t, e.LoadVocabulary(v))
	assert.Equal(t, 4, e.Rules().Len())
	assert.Equal(t, []ir.Fact{ir.MustFact(leftOf, "fork", "knife")}, e.Query("fork", "knife"))
}

func TestEngine_LoadVocabularyRejectsBadFactsAtomically(t *testing.T) {
	e := newTestEngine(t)
	v := ir.Vocabulary{
		Name:  "broken",
		Pairs: []ir.RelationPair{{First: leftOf, Second: rightOf}},
		Facts: []ir.Fact{
			{Type: leftOf, Subject: "fork", Object: "plate"},
			{Type: leftOf, Subject: " ", Object: "plate"},
		},
	}

	err := e.LoadVocabulary(v)
	require.Error(t, err)
	assert.True(t, ir.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), `vocabulary "broken"`)
	assert.Equal(t, 0, e.Rules().Len())
	assert.Equal(t, 0, e.Facts().Len())
}

func TestEngine_ObserverSeesEveryStep(t *testing.T) {
	var events []ir.Event
	e := New(
		WithSessionGenerator(NewFixedGenerator("s")),
		WithObserver(ObserverFunc(func(ev ir.Event) { events = append(events, ev) })),
	)
	e.RegisterRule(rules.Mirror{Source: leftOf, Target: rightOf})
	e.Insert(ir.MustFact(leftOf, "fork", "plate"))
	e.Insert(ir.MustFact(leftOf, "fork", "plate"))

	e.RunFull()

	asserted := ir.MustFact(leftOf, "fork", "plate")
	derived := ir.MustFact(rightOf, "plate", "fork")
	mirror := "mirror(left of->right of)"
	full := ir.StrategyFull

	assert.Equal(t, []ir.Event{
		{Seq: 1, Session: "s", Kind: ir.EventFactAsserted, Fact: &asserted},
		{Seq: 2, Session: "s", Kind: ir.EventRoundStarted, Strategy: full, Round: 1},
		{Seq: 3, Session: "s", Kind: ir.EventFactDerived, Strategy: full, Round: 1, Rule: mirror, Fact: &derived},
		{Seq: 4, Session: "s", Kind: ir.EventRuleFired, Strategy: full, Round: 1, Rule: mirror, Added: 1},
		{Seq: 5, Session: "s", Kind: ir.EventRoundStarted, Strategy: full, Round: 2},
		{Seq: 6, Session: "s", Kind: ir.EventRuleFired, Strategy: full, Round: 2, Rule: mirror},
		{Seq: 7, Session: "s", Kind: ir.EventFixpointReached, Strategy: full, Round: 2, Added: 1},
	}, events)
}

func TestEngine_WithClockContinuesSequence(t *testing.T) {
	var last int64
	e := New(
		WithClock(NewClockAt(10)),
		WithObserver(ObserverFunc(func(ev ir.Event) { last = ev.Seq })),
	)
	e.Insert(ir.MustFact(leftOf, "fork", "plate"))

	assert.Equal(t, int64(11), last)
}

func TestEngine_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := New(WithLogger(logger), WithSessionGenerator(NewFixedGenerator("log-session")))
	require.NoError(t, e.RegisterRelationPair(leftOf, rightOf))
	e.Insert(ir.MustFact(leftOf, "fork", "plate"))

	e.RunFull()

	out := buf.String()
	assert.Contains(t, out, "msg=\"rule fired\"")
	assert.Contains(t, out, "session=log-session")
	assert.Contains(t, out, "msg=\"fixpoint reached\"")
}
