// Package ir is the canonical value layer of the treasury runtime.
//
// Call arguments, events and state snapshots are converted to IRValue trees
// before they are hashed or persisted. This package imports nothing internal
// so every other package can depend on it.
//
// Key constraints:
//   - NO floats anywhere; balances and blocks are integers
//   - Object keys are ordered by UTF-16 code units (RFC 8785)
//   - Strings are NFC normalized at the serialization boundary
//   - Logical clocks (block, index, seq) only, never wall-clock timestamps
package ir
