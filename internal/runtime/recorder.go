package runtime

import (
	"context"

	"github.com/roach88/treasury/internal/ir"
	"github.com/roach88/treasury/internal/types"
)

// Recorder persists the log. store.Store implements it.
type Recorder interface {
	// WriteGenesis binds the log to a genesis. Writing the same hash again is
	// a no-op; a different hash is an error.
	WriteGenesis(ctx context.Context, hash string, genesis []byte) error
	// WriteCall appends an applied call and its events.
	WriteCall(ctx context.Context, call ir.CallRecord, events []ir.EventRecord) error
	// WriteBlock appends a finalized block and the events of its finalization.
	WriteBlock(ctx context.Context, block ir.BlockRecord, events []ir.EventRecord) error
}

// Observer receives runtime indicators. metrics.Metrics implements it.
type Observer interface {
	CallApplied(method, result string)
	CallRejected(method string, code ErrorCode)
	EventEmitted(module, name string)
	BlockFinalized(block types.BlockNumber, calls int)
	BudgetBalance(budgetType string, balance types.Balance)
}

type noopRecorder struct{}

func (noopRecorder) WriteGenesis(context.Context, string, []byte) error                { return nil }
func (noopRecorder) WriteCall(context.Context, ir.CallRecord, []ir.EventRecord) error   { return nil }
func (noopRecorder) WriteBlock(context.Context, ir.BlockRecord, []ir.EventRecord) error { return nil }

type noopObserver struct{}

func (noopObserver) CallApplied(string, string)            {}
func (noopObserver) CallRejected(string, ErrorCode)        {}
func (noopObserver) EventEmitted(string, string)           {}
func (noopObserver) BlockFinalized(types.BlockNumber, int) {}
func (noopObserver) BudgetBalance(string, types.Balance)   {}
