// Package store provides the SQLite-backed append-only log of a treasury
// chain.
//
// The log holds:
//   - Genesis: the canonical genesis document the log is bound to
//   - Calls: every applied call with its outcome, in block/index order
//   - Events: events emitted by calls and by block finalization
//   - Blocks: finalized blocks with their state roots
//
// Values (origins, arguments, event payloads, genesis) are stored as
// canonical JSON produced by internal/ir, so a read-back record hashes to
// the same id as the one written. Queries order by block and index or by
// seq, never by wall-clock time, which keeps reads identical across replays.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: events reference their calls
//
// Store implements runtime.Recorder and runtime.Source.
package store
