package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/prodsys/internal/compiler"
	"github.com/roach88/prodsys/internal/engine"
	"github.com/roach88/prodsys/internal/ir"
	"github.com/roach88/prodsys/internal/rules"
	"github.com/roach88/prodsys/internal/testutil"
)

// Harness builds identical engines for one scenario.
type Harness struct {
	scenario     *Scenario
	vocabularies []ir.Vocabulary
	seeds        []ir.Fact
	logger       *slog.Logger
}

// New compiles the scenario's vocabularies and validates its names. The
// returned Harness can build any number of engines.
func New(scenario *Scenario) (*Harness, error) {
	h := &Harness{
		scenario: scenario,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, dir := range scenario.Vocabularies {
		loaded, errs := compiler.LoadVocabularies(dir, compiler.LoadModeFailFast)
		if len(errs) > 0 {
			return nil, fmt.Errorf("vocabulary %s: %w", dir, errs[0])
		}
		h.vocabularies = append(h.vocabularies, loaded.Vocabularies...)
	}

	for i, f := range scenario.Facts {
		fact, err := ir.NewFact(f.Type, f.Subject, f.Object)
		if err != nil {
			return nil, fmt.Errorf("facts[%d]: %w", i, err)
		}
		h.seeds = append(h.seeds, fact)
	}

	// One throwaway engine surfaces every rule naming error up front.
	if _, err := h.NewEngine(); err != nil {
		return nil, err
	}
	return h, nil
}

// SessionID returns the session id every engine of the scenario uses.
func SessionID(s *Scenario) string {
	return testutil.NewFixedSessionGenerator(s.Session).Generate()
}

// NewEngine builds a fresh engine with the scenario's rules and seeds.
// Setup order: vocabularies, pairs, mirrors, symmetric, transitive, facts.
func (h *Harness) NewEngine(observers ...engine.Observer) (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(h.scenario.Session)),
		engine.WithLogger(h.logger),
	}
	for _, o := range observers {
		opts = append(opts, engine.WithObserver(o))
	}
	e := engine.New(opts...)

	for _, v := range h.vocabularies {
		if err := e.LoadVocabulary(v); err != nil {
			return nil, err
		}
	}
	for i, p := range h.scenario.Pairs {
		if err := e.RegisterRelationPair(p[0], p[1]); err != nil {
			return nil, fmt.Errorf("pairs[%d]: %w", i, err)
		}
	}
	for i, m := range h.scenario.Mirrors {
		r, err := rules.NewMirror(m.Source, m.Target)
		if err != nil {
			return nil, fmt.Errorf("mirrors[%d]: %w", i, err)
		}
		e.RegisterRule(r)
	}
	for i, t := range h.scenario.Symmetric {
		m, err := rules.NewMirror(t, t)
		if err != nil {
			return nil, fmt.Errorf("symmetric[%d]: %w", i, err)
		}
		e.RegisterRule(m)
	}
	for i, t := range h.scenario.Transitive {
		r, err := rules.NewTransitive(t)
		if err != nil {
			return nil, fmt.Errorf("transitive[%d]: %w", i, err)
		}
		e.RegisterRule(r)
	}
	for _, f := range h.seeds {
		e.Insert(f)
	}
	return e, nil
}

// Run executes a scenario and returns the result.
//
// An error means the scenario could not be set up (bad vocabulary, bad
// names). Failed expectations and assertions are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	h, err := New(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()

	for _, q := range scenario.Queries {
		var runs []QueryResult
		for _, strategy := range strategiesFor(q.Strategy) {
			qr, err := h.runQuery(q.Subject, q.Object, strategy)
			if err != nil {
				return nil, err
			}
			if err := checkExpect(qr, q.Expect); err != nil {
				result.AddError(err.Error())
			}
			runs = append(runs, qr)
		}
		if len(runs) == 2 && !sameFacts(runs[0].Facts, runs[1].Facts) {
			result.AddError((&AssertionError{
				Type:     AssertStrategiesAgree,
				Expected: fmt.Sprintf("full(%s, %s) = %s", q.Subject, q.Object, formatFacts(runs[1].Facts)),
				Actual:   fmt.Sprintf("fast(%s, %s) = %s", q.Subject, q.Object, formatFacts(runs[0].Facts)),
			}).Error())
		}
		result.Queries = append(result.Queries, runs...)
	}

	closure, err := h.NewEngine()
	if err != nil {
		return nil, err
	}
	closure.RunFull()
	result.Conditions = closure.ListConditions()

	for _, a := range scenario.Assertions {
		if err := h.checkAssertion(a, closure); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

// strategiesFor expands a query strategy; "both" runs fast, then full.
func strategiesFor(strategy string) []string {
	switch strategy {
	case "", StrategyBoth:
		return []string{StrategyFast, StrategyFull}
	default:
		return []string{strategy}
	}
}

func (h *Harness) runQuery(subject, object, strategy string) (QueryResult, error) {
	qr := QueryResult{
		Subject:  subject,
		Object:   object,
		Strategy: strategy,
		Trace:    []ir.Event{},
	}
	e, err := h.NewEngine(engine.ObserverFunc(func(ev ir.Event) {
		qr.Trace = append(qr.Trace, ev)
	}))
	if err != nil {
		return qr, err
	}

	switch strategy {
	case StrategyFull:
		qr.Stats = e.RunFull()
	case StrategyFast:
		qr.Stats = e.RunRelevant(subject, object)
	case StrategyExact:
	default:
		return qr, fmt.Errorf("unknown strategy %q", strategy)
	}
	qr.Facts = e.QueryExact(subject, object)
	return qr, nil
}
