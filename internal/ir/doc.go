// Package ir provides the value types shared by every prodsys layer.
//
// This package contains plain data only: facts, vocabularies, and the
// events emitted while a session evaluates. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Fact is a comparable struct and doubles as its own index key
//   - Names are NFC-normalized at construction so spelling variants collide
//   - All JSON tags use snake_case
//   - Event ordering uses a logical seq, never wall-clock time
package ir
