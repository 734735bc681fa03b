// Package engine drives rules over a fact store to a fixpoint and answers
// relation queries between two entities.
//
// An Engine is one session: it exclusively owns a memory.FactStore and a
// rules.Registry. Facts go in through InsertFact, rules through
// RegisterRule or RegisterRelationPair, and the query methods read the
// store's by-pair index after (optionally) running a fixpoint.
//
// STRATEGIES:
//
// Full (RunFull): every round fires every registered rule in registration
// order and sums the facts they add. A round that adds nothing ends the run.
//
// Relevant (RunRelevant): every round re-collects, from scratch, the facts
// mentioning either query entity, and fires only the rules their relation
// types trigger, each distinct rule at most once per round. The working set
// is not tracked incrementally.
//
// CONCURRENCY:
//
// An Engine is single-threaded and synchronous. Nothing blocks and nothing
// can fail once a fact or rule is accepted; evaluation only terminates.
// Hosts that share an Engine between goroutines must serialize calls.
//
// EVENTS:
//
// Every observable step is stamped with a per-session logical clock and
// handed to the registered Observers (see ir.Event). Observers exist for
// logging, the derivation log and the scenario harness; the engine never
// reads events back.
package engine
