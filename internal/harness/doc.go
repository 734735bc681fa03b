// Package harness runs YAML scenarios against the inference engine.
//
// A scenario declares a vocabulary (relation pairs, symmetric and
// transitive relations, or CUE vocabulary directories), seed facts, a list
// of point queries with expectations, and assertions over the fixpoint.
//
// Every query runs on a fresh engine built from the scenario, so results
// never depend on the order queries are listed in. All engines share the
// scenario's fixed session id, which makes traces byte-for-byte
// reproducible and comparable with golden files (see golden.go).
package harness
