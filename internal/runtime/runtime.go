package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/treasury/internal/bounty"
	"github.com/roach88/treasury/internal/budget"
	"github.com/roach88/treasury/internal/ir"
	"github.com/roach88/treasury/internal/ledger"
	"github.com/roach88/treasury/internal/membership"
	"github.com/roach88/treasury/internal/state"
	"github.com/roach88/treasury/internal/types"
)

// Runtime is a single-writer chain of blocks over the treasury engines.
type Runtime struct {
	mu sync.Mutex

	genesis     Genesis
	genesisHash string

	block    *types.FixedBlock
	clock    *Clock
	quota    *BlockQuota
	events   *types.EventBuffer
	handlers map[string]handler

	ledger   *ledger.Ledger
	members  *membership.Registry
	budgets  *budget.Module
	bounties *bounty.Module

	// per-block counters, reset by FinalizeBlock
	blockCalls  int
	blockEvents int
	last        *ir.BlockRecord

	recorder Recorder
	observer Observer
	sessions SessionGenerator
	session  string
	logger   *slog.Logger
	queue    *requestQueue
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithRecorder persists the log through rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Runtime) { r.recorder = rec }
}

// WithObserver reports indicators to obs.
func WithObserver(obs Observer) Option {
	return func(r *Runtime) { r.observer = obs }
}

// WithLogger sets the logger of the runtime and its engines.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) { r.logger = logger }
}

// WithSessionGenerator sets how the session id is generated.
func WithSessionGenerator(gen SessionGenerator) Option {
	return func(r *Runtime) { r.sessions = gen }
}

// WithClock resumes the logical clock.
func WithClock(c *Clock) Option {
	return func(r *Runtime) { r.clock = c }
}

// Receipt is the outcome of an applied call.
type Receipt struct {
	ir.CallRecord
	Events []ir.EventRecord `json:"events"`
}

// OK reports whether the call succeeded.
func (rc Receipt) OK() bool { return rc.Result == ir.OK }

// New builds the genesis state and binds the recorder to it.
func New(ctx context.Context, genesis Genesis, opts ...Option) (*Runtime, error) {
	if genesis.StartBlock == 0 {
		genesis.StartBlock = 1
	}
	r := &Runtime{
		genesis:  genesis,
		block:    &types.FixedBlock{Block: genesis.StartBlock},
		clock:    NewClock(),
		quota:    NewBlockQuota(genesis.Params.MaxCallsPerBlock),
		events:   &types.EventBuffer{},
		recorder: noopRecorder{},
		observer: noopObserver{},
		sessions: UUIDv7Generator{},
		logger:   slog.Default(),
		queue:    newRequestQueue(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.session = r.sessions.Generate()

	p := genesis.Params
	r.ledger = ledger.New(
		ledger.WithExistentialDeposit(p.ExistentialDeposit),
		ledger.WithEvents(r.events),
		ledger.WithLogger(r.logger),
	)
	r.members = membership.NewRegistry()
	r.budgets = budget.New(p.budgetConfig(), r.block, r.ledger, r.members,
		budget.WithEvents(r.events),
		budget.WithLogger(r.logger),
	)
	r.bounties = bounty.New(p.bountyConfig(), r.block, r.ledger, r.members, r.budgets.CouncilManager(),
		bounty.WithEvents(r.events),
		bounty.WithLogger(r.logger),
	)
	r.registerHandlers()

	if err := genesis.apply(r); err != nil {
		return nil, fmt.Errorf("apply genesis: %w", err)
	}
	r.events.Drain()

	canonical, err := ir.Canonicalize(genesis)
	if err != nil {
		return nil, fmt.Errorf("canonicalize genesis: %w", err)
	}
	genesisValue, err := ir.FromJSON(canonical)
	if err != nil {
		return nil, err
	}
	if r.genesisHash, err = ir.GenesisHash(genesisValue); err != nil {
		return nil, err
	}
	if err := r.recorder.WriteGenesis(ctx, r.genesisHash, canonical); err != nil {
		return nil, storeError("write genesis", err)
	}

	r.logger.Info("runtime started",
		"session", r.session,
		"genesis", r.genesisHash,
		"start_block", genesis.StartBlock,
	)
	return r, nil
}

// Apply applies call in the current block.
//
// A call rejected by its engine is still applied: the receipt carries the
// error code and the call is recorded. The returned error is a runtime
// *Error for calls that could not be applied at all (unknown method,
// undecodable arguments, full block) or could not be recorded.
func (r *Runtime) Apply(ctx context.Context, call Call) (Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.apply(ctx, call)
}

func (r *Runtime) apply(ctx context.Context, call Call) (Receipt, error) {
	block := uint64(r.block.Block)
	h, ok := r.handlers[call.Method]
	if !ok {
		return r.reject(call.Method, &Error{Code: ErrCodeUnknownCall, Message: "no such method", Method: call.Method})
	}
	if call.Origin == nil {
		call.Origin = types.None()
	}
	args := call.Args
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	run, err := h(args)
	if err != nil {
		return r.reject(call.Method, &Error{Code: ErrCodeDecode, Message: "decode args", Method: call.Method, Err: err})
	}
	argsValue, err := ir.FromJSON(args)
	if err != nil {
		return r.reject(call.Method, &Error{Code: ErrCodeDecode, Message: "canonicalize args", Method: call.Method, Err: err})
	}
	originValue, err := originObject(call.Origin)
	if err != nil {
		return r.reject(call.Method, &Error{Code: ErrCodeDecode, Message: "encode origin", Method: call.Method, Err: err})
	}
	if err := r.quota.Check(block); err != nil {
		return r.reject(call.Method, err)
	}

	index := r.blockCalls
	id, err := ir.CallID(block, index, originValue, call.Method, argsValue)
	if err != nil {
		r.quota.Release()
		return r.reject(call.Method, &Error{Code: ErrCodeDecode, Message: "call id", Method: call.Method, Err: err})
	}

	dispatchErr := run(call.Origin)
	emitted := r.events.Drain()
	if dispatchErr != nil {
		emitted = nil
	}

	rec := ir.CallRecord{
		ID:      id,
		Block:   block,
		Index:   index,
		Seq:     r.clock.Next(),
		Session: r.session,
		Origin:  originValue,
		Method:  call.Method,
		Args:    argsValue,
		Result:  types.ErrorCode(dispatchErr),
	}
	if dispatchErr != nil {
		rec.Message = dispatchErr.Error()
	}
	events, err := r.eventRecords(id, emitted)
	if err != nil {
		return Receipt{}, err
	}
	r.blockCalls++

	if err := r.recorder.WriteCall(ctx, rec, events); err != nil {
		return Receipt{}, storeError("write call", err)
	}

	r.observer.CallApplied(rec.Method, rec.Result)
	for _, ev := range events {
		r.observer.EventEmitted(ev.Module, ev.Name)
	}
	if dispatchErr != nil {
		r.logger.Debug("call rejected",
			"method", rec.Method,
			"origin", call.Origin,
			"block", block,
			"code", rec.Result,
		)
	} else {
		r.logger.Debug("call applied",
			"method", rec.Method,
			"origin", call.Origin,
			"block", block,
			"events", len(events),
		)
	}
	return Receipt{CallRecord: rec, Events: events}, nil
}

func (r *Runtime) reject(method string, err error) (Receipt, error) {
	if re, ok := err.(*Error); ok {
		r.observer.CallRejected(method, re.Code)
	}
	r.logger.Debug("call not applied", "method", method, "error", err)
	return Receipt{}, err
}

func originObject(o types.Origin) (ir.IRObject, error) {
	data, err := types.MarshalOrigin(o)
	if err != nil {
		return nil, err
	}
	v, err := ir.FromJSON(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(ir.IRObject)
	if !ok {
		return nil, fmt.Errorf("origin does not encode as an object")
	}
	return obj, nil
}

// eventRecords numbers events within the block and hashes them.
func (r *Runtime) eventRecords(callID string, events []types.Event) ([]ir.EventRecord, error) {
	out := make([]ir.EventRecord, 0, len(events))
	for _, ev := range events {
		payload, err := ir.ObjectFromValue(ev)
		if err != nil {
			return nil, fmt.Errorf("encode event %s.%s: %w", ev.Module(), ev.Name(), err)
		}
		block := uint64(r.block.Block)
		hash, err := ir.EventHash(callID, block, r.blockEvents, ev.Module(), ev.Name(), payload)
		if err != nil {
			return nil, err
		}
		out = append(out, ir.EventRecord{
			Hash:    hash,
			CallID:  callID,
			Block:   block,
			Index:   r.blockEvents,
			Module:  ev.Module(),
			Name:    ev.Name(),
			Payload: payload,
		})
		r.blockEvents++
	}
	return out, nil
}

// FinalizeBlock runs budget maintenance for the current block, commits the
// state root, records the block and advances to the next block.
func (r *Runtime) FinalizeBlock(ctx context.Context) (ir.BlockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, _, err := r.finalize(ctx)
	return rec, err
}

func (r *Runtime) finalize(ctx context.Context) (ir.BlockRecord, []ir.EventRecord, error) {
	now := r.block.Block
	r.budgets.OnFinalize(now)
	events, err := r.eventRecords("", r.events.Drain())
	if err != nil {
		return ir.BlockRecord{}, nil, err
	}
	root, err := r.stateRoot()
	if err != nil {
		return ir.BlockRecord{}, nil, err
	}
	rec := ir.BlockRecord{
		Number:    uint64(now),
		StateRoot: root,
		Calls:     r.blockCalls,
		Events:    r.blockEvents,
	}
	if err := r.recorder.WriteBlock(ctx, rec, events); err != nil {
		return ir.BlockRecord{}, nil, storeError("write block", err)
	}

	for _, ev := range events {
		r.observer.EventEmitted(ev.Module, ev.Name)
	}
	r.observer.BlockFinalized(now, r.blockCalls)
	for _, t := range r.budgets.Budgets() {
		r.observer.BudgetBalance(string(t), r.budgets.Controller(t).GetBalance())
	}
	r.logger.Info("block finalized",
		"block", now,
		"calls", rec.Calls,
		"events", rec.Events,
		"state_root", root,
	)

	r.last = &rec
	r.block.Block = now + 1
	r.blockCalls = 0
	r.blockEvents = 0
	r.quota.Reset()
	return rec, events, nil
}

// AdvanceTo finalizes blocks until target is the current block.
func (r *Runtime) AdvanceTo(ctx context.Context, target types.BlockNumber) ([]ir.BlockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ir.BlockRecord
	for r.block.Block < target {
		rec, _, err := r.finalize(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Snapshot is the canonical view of all engine storage.
type Snapshot struct {
	Accounts      *state.Map[types.AccountID, ledger.Account]   `json:"accounts"`
	TotalIssuance types.Balance                                 `json:"total_issuance"`
	Members       *state.Map[types.MemberID, membership.Member] `json:"members"`
	Budget        budget.Snapshot                               `json:"budget"`
	Bounty        bounty.Snapshot                               `json:"bounty"`
}

func (r *Runtime) snapshot() Snapshot {
	return Snapshot{
		Accounts:      r.ledger.Accounts(),
		TotalIssuance: r.ledger.TotalIssuance(),
		Members:       r.members.Members(),
		Budget:        r.budgets.Snapshot(),
		Bounty:        r.bounties.Snapshot(),
	}
}

func (r *Runtime) stateRoot() (string, error) {
	v, err := ir.FromValue(r.snapshot())
	if err != nil {
		return "", fmt.Errorf("snapshot state: %w", err)
	}
	return ir.StateRoot(uint64(r.block.Block), v)
}

// StateRoot returns the commitment to the current state at the current block.
func (r *Runtime) StateRoot() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateRoot()
}

// SnapshotJSON returns the current state as JSON.
func (r *Runtime) SnapshotJSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return json.Marshal(r.snapshot())
}

// GenesisHash returns the hash of the genesis the runtime was built from.
func (r *Runtime) GenesisHash() string { return r.genesisHash }

// Genesis returns the genesis the runtime was built from.
func (r *Runtime) Genesis() Genesis { return r.genesis }

// Session returns the session id recorded with calls.
func (r *Runtime) Session() string { return r.session }

// CurrentBlock returns the block calls are applied in.
func (r *Runtime) CurrentBlock() types.BlockNumber {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.block.Block
}

// Seq returns the last issued call sequence number.
func (r *Runtime) Seq() int64 { return r.clock.Current() }
