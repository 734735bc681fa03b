// Package rules defines the derivation rules of a session and the registry
// that indexes them by triggering relation type.
//
// The rule vocabulary is closed: Mirror and Transitive are the only
// variants, and Process dispatches on them with an exhaustive type switch.
// A Registry is the session's long-term memory: configured before facts
// are evaluated and never changed while a fixpoint run is in progress.
package rules
