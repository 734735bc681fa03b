// Package memory holds the working fact set of an inference session.
//
// A FactStore is the session's short-term memory: every fact currently
// believed true, plus indexes that let rules and queries reach facts
// without scanning the whole set.
//
// # Indexes
//
//   - by key: the Fact value itself, for duplicate detection
//   - by pair: (subject, object), answering "what holds between X and Y"
//   - by entity: every fact naming an entity as subject or object
//   - by type: every fact of one relation type, the rule trigger index
//
// Every bucket preserves insertion order so results are deterministic.
//
// # Invariants
//
// A fact is in the key index iff it is in the canonical sequence iff it is
// in exactly one pair bucket, in the entity bucket of each of its entities
// (once when subject and object coincide), and in its type bucket. Facts
// are never removed; the set only grows.
//
// FactStore is not safe for concurrent use. A host serving several
// goroutines must serialize access per session.
package memory
