package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/treasury/internal/config"
	"github.com/roach88/treasury/internal/ir"
	"github.com/roach88/treasury/internal/runtime"
	"github.com/roach88/treasury/internal/store"
	"github.com/roach88/treasury/internal/types"
)

// Harness executes one scenario against a fresh runtime.
type Harness struct {
	store   *store.Store
	rt      *runtime.Runtime
	logger  *slog.Logger
	ownsLog bool
}

// Option configures a scenario run.
type Option func(*options)

type options struct {
	store  *store.Store
	logger *slog.Logger
}

// WithStore records the scenario into st instead of an in-memory store.
// st must be empty or bound to the same genesis.
func WithStore(st *store.Store) Option {
	return func(o *options) {
		o.store = st
	}
}

// WithLogger sets the logger of the harness and the runtime it drives.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Validate the genesis and build a runtime recording into the store
// 2. Apply each block's calls, checking their expect clauses
// 3. Seal blocks, advancing to numbered blocks first
// 4. Evaluate assertions against the trace, runtime views and the log
//
// A non-nil error means the scenario could not be executed. Failed
// expectations are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	doc := scenario.Genesis
	if doc == nil {
		doc = map[string]any{}
	}
	genesis, err := config.Decode(doc)
	if err != nil {
		return nil, fmt.Errorf("scenario genesis: %w", err)
	}

	h := &Harness{store: o.store, logger: o.logger}
	if h.store == nil {
		h.store, err = store.Open(":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		h.ownsLog = true
	}
	defer h.close()

	session := scenario.Session
	if session == "" {
		session = DefaultSession
	}
	h.rt, err = runtime.New(ctx, genesis,
		runtime.WithRecorder(h.store),
		runtime.WithSessionGenerator(runtime.NewFixedGenerator(session)),
		runtime.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("build runtime: %w", err)
	}

	result := NewResult()
	for i, block := range scenario.Blocks {
		if err := h.executeBlock(ctx, i, block, result); err != nil {
			return nil, fmt.Errorf("block step %d: %w", i, err)
		}
	}

	result.Head = uint64(h.rt.CurrentBlock())
	if result.StateRoot, err = h.rt.StateRoot(); err != nil {
		return nil, err
	}

	actx := &AssertionContext{Runtime: h.rt, Store: h.store, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"head", result.Head,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (h *Harness) close() {
	if h.ownsLog {
		h.store.Close()
	}
}

func (h *Harness) executeBlock(ctx context.Context, step int, block BlockStep, result *Result) error {
	if block.Number != 0 {
		target := types.BlockNumber(block.Number)
		if target < h.rt.CurrentBlock() {
			result.AddError(fmt.Sprintf("block step %d: block %d is already finalized (current %d)", step, target, h.rt.CurrentBlock()))
			return nil
		}
		sealed, err := h.rt.AdvanceTo(ctx, target)
		if err != nil {
			return err
		}
		for _, rec := range sealed {
			result.Trace = append(result.Trace, blockTrace(rec))
		}
	}

	for i, call := range block.Calls {
		if err := h.executeCall(ctx, fmt.Sprintf("block step %d call %d", step, i), call, result); err != nil {
			return fmt.Errorf("call %d: %w", i, err)
		}
	}

	if !block.sealed() {
		return nil
	}
	rec, err := h.rt.FinalizeBlock(ctx)
	if err != nil {
		return err
	}
	result.Trace = append(result.Trace, blockTrace(rec))
	return nil
}

// executeCall applies one call and validates its expect clause.
func (h *Harness) executeCall(ctx context.Context, where string, step CallStep, result *Result) error {
	origin, err := ParseOrigin(step.Origin)
	if err != nil {
		return err
	}
	call := runtime.Call{Origin: origin, Method: step.Method}
	if step.Args != nil {
		if call.Args, err = json.Marshal(step.Args); err != nil {
			return fmt.Errorf("encode args: %w", err)
		}
	}

	expect := step.Expect
	if expect == nil {
		expect = &ExpectClause{}
	}

	rc, err := h.rt.Apply(ctx, call)
	var re *runtime.Error
	if errors.As(err, &re) && !runtime.IsStoreError(err) {
		ev := TraceEvent{
			Type:   TraceReject,
			Block:  uint64(h.rt.CurrentBlock()),
			Origin: origin.String(),
			Method: step.Method,
			Result: string(re.Code),
		}
		if len(call.Args) > 0 {
			ev.Args, _ = ir.FromJSON(call.Args)
		}
		result.Trace = append(result.Trace, ev)
		if expect.Rejected != string(re.Code) {
			result.AddError(fmt.Sprintf("%s: %s rejected with %s (%s), expected %s", where, step.Method, re.Code, re.Error(), describeExpect(expect)))
		}
		h.logger.Info("scenario call rejected", "method", step.Method, "code", re.Code)
		return nil
	}
	if err != nil {
		return err
	}

	ev := TraceEvent{
		Type:   TraceCall,
		Block:  rc.Block,
		Index:  rc.Index,
		Origin: origin.String(),
		Method: rc.Method,
		Args:   rc.Args,
		Result: rc.Result,
		Events: make([]TraceEntry, 0, len(rc.Events)),
	}
	for _, e := range rc.Events {
		ev.Events = append(ev.Events, TraceEntry{Name: e.Module + "." + e.Name, Payload: e.Payload})
	}
	result.Trace = append(result.Trace, ev)

	switch {
	case expect.Rejected != "":
		result.AddError(fmt.Sprintf("%s: %s was applied with result %s, expected rejection %s", where, step.Method, rc.Result, expect.Rejected))
	case rc.Result != expect.result():
		result.AddError(fmt.Sprintf("%s: %s result = %s (%s), expected %s", where, step.Method, rc.Result, rc.Message, expect.result()))
	case expect.Events != nil:
		got := make([]string, 0, len(ev.Events))
		for _, e := range ev.Events {
			got = append(got, e.Name)
		}
		if !slices.Equal(got, expect.Events) {
			result.AddError(fmt.Sprintf("%s: %s events = %v, expected %v", where, step.Method, got, expect.Events))
		}
	}

	h.logger.Info("scenario call applied",
		"method", rc.Method,
		"block", rc.Block,
		"index", rc.Index,
		"result", rc.Result,
		"call_id", rc.ID,
	)
	return nil
}

func (e *ExpectClause) result() string {
	if e.Result == "" {
		return ir.OK
	}
	return e.Result
}

func describeExpect(e *ExpectClause) string {
	if e.Rejected != "" {
		return "rejection " + e.Rejected
	}
	return "result " + e.result()
}

func blockTrace(rec ir.BlockRecord) TraceEvent {
	return TraceEvent{Type: TraceBlock, Block: rec.Number, Calls: rec.Calls}
}
