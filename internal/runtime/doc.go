// Package runtime is the deterministic single-writer dispatcher that drives
// the treasury engines.
//
// A Runtime owns one ledger, one membership registry, the budget engine and
// the bounty engine. Calls are applied one at a time in the current block:
// each call is decoded, authorized and executed by its engine, and its
// outcome and events are recorded. FinalizeBlock runs budget maintenance,
// commits a state root and advances the block.
//
// # Determinism
//
// Every input that affects state is in the log: the genesis, the calls in
// order with their block and index, and the block boundaries. Replay
// rebuilds a runtime from the genesis, re-applies the log and compares call
// outcomes, event hashes and state roots. Wall-clock time never enters the
// state; the session id recorded with calls is informational only.
//
// # Thread-safety
//
// Apply, FinalizeBlock and the query methods serialize on one mutex. Run
// drains a submission queue on one goroutine, so HTTP handlers and the block
// scheduler can submit from anywhere.
package runtime
