package engine

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/prodsys/internal/ir"
	"github.com/roach88/prodsys/internal/memory"
	"github.com/roach88/prodsys/internal/rules"
)

// Engine is one inference session.
//
// INVARIANTS:
//   - the fact store only grows; no fact is ever removed
//   - rule registration order never changes
//   - event seqs are strictly increasing within the session
type Engine struct {
	facts     *memory.FactStore
	rules     *rules.Registry
	clock     *Clock
	session   string
	sessions  SessionGenerator
	logger    *slog.Logger
	observers []Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for evaluation debug output.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithObserver adds an event observer. Repeatable; observers are called in
// the order they were added.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// WithSessionGenerator sets where the session id comes from.
// Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(e *Engine) {
		e.sessions = g
	}
}

// WithClock continues the event sequence of an earlier session instead of
// starting at 1.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// Stats summarizes one fixpoint run.
type Stats struct {
	Strategy ir.Strategy
	Rounds   int // Rounds executed, including the final unproductive one
	Firings  int // Process calls across all rounds
	Derived  int // New facts added by the run
}

// New creates an empty session.
func New(opts ...Option) *Engine {
	e := &Engine{
		facts:    memory.NewFactStore(),
		rules:    rules.NewRegistry(),
		clock:    NewClock(),
		sessions: UUIDv7Generator{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.session = e.sessions.Generate()
	return e
}

// Session returns the session id stamped on every event.
func (e *Engine) Session() string { return e.session }

// Facts returns the session's fact store. Callers must not insert into it
// directly if they rely on fact_asserted events.
func (e *Engine) Facts() *memory.FactStore { return e.facts }

// Rules returns the session's rule registry.
func (e *Engine) Rules() *rules.Registry { return e.rules }

// InsertFact validates and inserts a seed fact. It returns false, with no
// error, when the fact was already known.
func (e *Engine) InsertFact(relationType, subject, object string) (bool, error) {
	f, err := ir.NewFact(relationType, subject, object)
	if err != nil {
		return false, err
	}
	return e.Insert(f), nil
}

// Insert inserts an already validated seed fact and reports whether it was
// new. Facts from ir.NewFact or ir.MustFact are valid by construction.
func (e *Engine) Insert(f ir.Fact) bool {
	if !e.facts.Insert(f) {
		return false
	}
	asserted := f
	e.emit(ir.Event{Kind: ir.EventFactAsserted, Fact: &asserted})
	return true
}

// RegisterRule appends r to the registry.
func (e *Engine) RegisterRule(r rules.Rule) {
	e.rules.Register(r)
	e.logger.Debug("rule registered", "session", e.session, "rule", r.Name())
}

// RegisterRelationPair registers Mirror(a, b), Mirror(b, a), Transitive(a)
// and Transitive(b).
func (e *Engine) RegisterRelationPair(a, b string) error {
	if err := rules.RegisterRelationPair(e.rules, a, b); err != nil {
		return err
	}
	e.logger.Debug("relation pair registered", "session", e.session, "first", a, "second", b)
	return nil
}

// LoadVocabulary registers every rule of v and then inserts its seed facts.
// Nothing is changed if any name in v is invalid.
func (e *Engine) LoadVocabulary(v ir.Vocabulary) error {
	seeds := make([]ir.Fact, 0, len(v.Facts))
	for i, f := range v.Facts {
		nf, err := ir.NewFact(f.Type, f.Subject, f.Object)
		if err != nil {
			return fmt.Errorf("vocabulary %q fact %d: %w", v.Name, i, err)
		}
		seeds = append(seeds, nf)
	}
	if err := rules.RegisterVocabulary(e.rules, v); err != nil {
		return fmt.Errorf("vocabulary %q: %w", v.Name, err)
	}
	for _, f := range seeds {
		e.Insert(f)
	}
	e.logger.Debug("vocabulary loaded",
		"session", e.session,
		"vocabulary", v.Name,
		"rules", e.rules.Len(),
		"facts", len(seeds),
	)
	return nil
}

// RunFull fires every registered rule, in registration order, until a
// round adds no fact.
func (e *Engine) RunFull() Stats {
	st := Stats{Strategy: ir.StrategyFull}
	for {
		st.Rounds++
		e.emit(ir.Event{Kind: ir.EventRoundStarted, Strategy: st.Strategy, Round: st.Rounds})

		added := 0
		for _, r := range e.rules.Rules() {
			added += e.fire(r, st.Strategy, st.Rounds)
			st.Firings++
		}
		st.Derived += added

		if added == 0 {
			e.finish(st)
			return st
		}
	}
}

// RunRelevant runs the relevance-restricted fixpoint for a query between a
// and b. Each round collects the facts mentioning a or b, then fires each
// distinct rule their relation types trigger once. A round that adds no
// fact ends the run.
func (e *Engine) RunRelevant(a, b string) Stats {
	a, b = entityKey(a), entityKey(b)
	st := Stats{Strategy: ir.StrategyRelevant}
	for {
		st.Rounds++
		e.emit(ir.Event{Kind: ir.EventRoundStarted, Strategy: st.Strategy, Round: st.Rounds})

		added := 0
		for _, r := range e.relevantRules(a, b) {
			added += e.fire(r, st.Strategy, st.Rounds)
			st.Firings++
		}
		st.Derived += added

		if added == 0 {
			e.finish(st)
			return st
		}
	}
}

// relevantRules returns the rules triggered by the relation types of the
// facts currently mentioning a or b. Facts are deduplicated by identity and
// each rule appears once, in first-triggered order.
func (e *Engine) relevantRules(a, b string) []rules.Rule {
	seenFacts := make(map[ir.Fact]struct{})
	seenTypes := make(map[string]struct{})
	seenRules := make(map[rules.Rule]struct{})
	var out []rules.Rule

	for _, entity := range []string{a, b} {
		for _, f := range e.facts.FactsMentioning(entity) {
			if _, ok := seenFacts[f]; ok {
				continue
			}
			seenFacts[f] = struct{}{}

			if _, ok := seenTypes[f.Type]; ok {
				continue
			}
			seenTypes[f.Type] = struct{}{}

			for _, r := range e.rules.TriggeredBy(f.Type) {
				if _, ok := seenRules[r]; ok {
					continue
				}
				seenRules[r] = struct{}{}
				out = append(out, r)
			}
		}
	}
	return out
}

// Query runs the full fixpoint and returns the facts from a to b.
func (e *Engine) Query(a, b string) []ir.Fact {
	e.RunFull()
	return e.QueryExact(a, b)
}

// QueryFast runs the relevance-restricted fixpoint and returns the facts
// from a to b.
func (e *Engine) QueryFast(a, b string) []ir.Fact {
	e.RunRelevant(a, b)
	return e.QueryExact(a, b)
}

// QueryExact returns the facts currently stored from a to b without
// evaluating any rule. The result is empty, never nil, when nothing is
// known. Direction matters: (b, a) facts are not included.
func (e *Engine) QueryExact(a, b string) []ir.Fact {
	return e.facts.FactsBetween(entityKey(a), entityKey(b))
}

// ListConditions returns every fact grouped by relation type, groups in
// first-seen order, insertion order within a group.
func (e *Engine) ListConditions() []ir.Fact {
	return e.facts.Conditions()
}

func (e *Engine) fire(r rules.Rule, strategy ir.Strategy, round int) int {
	store := &derivingStore{engine: e, strategy: strategy, round: round, rule: r.Name()}
	added := rules.Process(r, store)

	e.emit(ir.Event{
		Kind:     ir.EventRuleFired,
		Strategy: strategy,
		Round:    round,
		Rule:     r.Name(),
		Added:    added,
	})
	e.logger.Debug("rule fired",
		"session", e.session,
		"strategy", string(strategy),
		"round", round,
		"rule", r.Name(),
		"added", added,
	)
	return added
}

func (e *Engine) finish(st Stats) {
	e.emit(ir.Event{
		Kind:     ir.EventFixpointReached,
		Strategy: st.Strategy,
		Round:    st.Rounds,
		Added:    st.Derived,
	})
	e.logger.Debug("fixpoint reached",
		"session", e.session,
		"strategy", string(st.Strategy),
		"rounds", st.Rounds,
		"firings", st.Firings,
		"derived", st.Derived,
		"facts", e.facts.Len(),
	)
}

func (e *Engine) emit(ev ir.Event) {
	if len(e.observers) == 0 {
		return
	}
	ev.Seq = e.clock.Next()
	ev.Session = e.session
	for _, o := range e.observers {
		o.Observe(ev)
	}
}

// entityKey normalizes a query entity the way ir.NewFact does. A name that
// cannot be normalized cannot match any stored fact, so it is used as is.
func entityKey(name string) string {
	n, err := ir.NormalizeName("entity", name)
	if err != nil {
		return name
	}
	return n
}
