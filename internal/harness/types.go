package harness

import (
	"github.com/roach88/treasury/internal/ir"
)

// Trace entry types.
const (
	TraceCall   = "call"
	TraceReject = "reject"
	TraceBlock  = "block"
)

// TraceEvent is one entry of a scenario trace: an applied call, a call the
// runtime refused, or a sealed block. Hashes are left out so traces read
// the same across changes to the hashing domains.
type TraceEvent struct {
	Type   string       `json:"type"`
	Block  uint64       `json:"block"`
	Index  int          `json:"index,omitempty"`
	Origin string       `json:"origin,omitempty"`
	Method string       `json:"method,omitempty"`
	Args   ir.IRValue   `json:"args,omitempty"`
	Result string       `json:"result,omitempty"`
	Events []TraceEntry `json:"events,omitempty"`
	Calls  int          `json:"calls,omitempty"`
}

// TraceEntry is an event emitted by a call.
type TraceEntry struct {
	Name    string      `json:"name"` // "module.Name"
	Payload ir.IRObject `json:"payload"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds calls and sealed blocks in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Head is the block the chain stopped at.
	Head uint64 `json:"head"`

	// StateRoot is the state root of the final state.
	StateRoot string `json:"state_root"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// events returns every event emitted by applied calls, in order.
func (r *Result) events() []TraceEntry {
	var out []TraceEntry
	for _, ev := range r.Trace {
		if ev.Type == TraceCall {
			out = append(out, ev.Events...)
		}
	}
	return out
}
