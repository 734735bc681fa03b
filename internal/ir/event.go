package ir

// EventKind categorizes an evaluation event.
type EventKind string

const (
	// EventFactAsserted is emitted when a caller inserts a new seed fact.
	EventFactAsserted EventKind = "fact_asserted"

	// EventRoundStarted is emitted at the start of every fixpoint round.
	EventRoundStarted EventKind = "round_started"

	// EventRuleFired is emitted after a rule has processed the store.
	EventRuleFired EventKind = "rule_fired"

	// EventFactDerived is emitted for each new fact a rule inserts.
	EventFactDerived EventKind = "fact_derived"

	// EventFixpointReached is emitted when a round produces nothing new.
	EventFixpointReached EventKind = "fixpoint_reached"
)

// Strategy names a fixpoint evaluation strategy.
type Strategy string

const (
	// StrategyFull re-evaluates every registered rule each round.
	StrategyFull Strategy = "full"

	// StrategyRelevant fires only rules triggered by facts touching the
	// two query entities.
	StrategyRelevant Strategy = "relevant"
)

// Event is one observable step of a session's evaluation.
//
// Events exist for hosts (logs, the derivation store, the scenario
// harness). Nothing in the engine reads them back.
type Event struct {
	Seq      int64     `json:"seq"`                // Logical clock, starts at 1 per session
	Session  string    `json:"session"`            // Session that produced the event
	Kind     EventKind `json:"kind"`
	Strategy Strategy  `json:"strategy,omitempty"` // Empty for fact_asserted
	Round    int       `json:"round,omitempty"`    // 1-based round within a run
	Rule     string    `json:"rule,omitempty"`     // Rule name for rule_fired and fact_derived
	Fact     *Fact     `json:"fact,omitempty"`     // Fact for fact_asserted and fact_derived
	Added    int       `json:"added,omitempty"`    // New facts for rule_fired and fixpoint_reached totals
}

// CanonicalMap returns the event as a map suitable for MarshalCanonical.
// Empty optional fields are omitted so golden files stay small.
func (e Event) CanonicalMap() map[string]any {
	m := map[string]any{
		"seq":  e.Seq,
		"kind": string(e.Kind),
	}
	if e.Session != "" {
		m["session"] = e.Session
	}
	if e.Strategy != "" {
		m["strategy"] = string(e.Strategy)
	}
	if e.Round != 0 {
		m["round"] = e.Round
	}
	if e.Rule != "" {
		m["rule"] = e.Rule
	}
	if e.Fact != nil {
		m["fact"] = *e.Fact
	}
	if e.Added != 0 {
		m["added"] = e.Added
	}
	return m
}
