package runtime

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/samber/lo"

	"github.com/roach88/treasury/internal/ir"
	"github.com/roach88/treasury/internal/types"
)

// DivergenceKind names what differed between the log and its replay.
type DivergenceKind string

const (
	DivergedGenesis   DivergenceKind = "genesis"
	DivergedCall      DivergenceKind = "call"
	DivergedCallID    DivergenceKind = "call_id"
	DivergedResult    DivergenceKind = "result"
	DivergedEvents    DivergenceKind = "events"
	DivergedBlock     DivergenceKind = "block"
	DivergedStateRoot DivergenceKind = "state_root"
)

// Divergence is one difference between the recorded log and its replay.
type Divergence struct {
	Block uint64         `json:"block"`
	Index int            `json:"index"`
	Kind  DivergenceKind `json:"kind"`
	Want  string         `json:"want"`
	Got   string         `json:"got"`
	Diff  string         `json:"diff,omitempty"`
}

// ReplayReport summarizes a replay.
type ReplayReport struct {
	GenesisHash string            `json:"genesis_hash"`
	Blocks      int               `json:"blocks"`
	Calls       int               `json:"calls"`
	Head        types.BlockNumber `json:"head"`
	StateRoot   string            `json:"state_root"`
	Divergences []Divergence      `json:"divergences,omitempty"`
}

// Diverged reports whether the replay found any difference.
func (rep ReplayReport) Diverged() bool { return len(rep.Divergences) > 0 }

func (rep *ReplayReport) add(d Divergence) {
	rep.Divergences = append(rep.Divergences, d)
}

func divergedError(rep ReplayReport) error {
	first := rep.Divergences[0]
	return &Error{
		Code:    ErrCodeReplayDiverged,
		Message: fmt.Sprintf("%d divergence(s), first %s at block %d index %d", len(rep.Divergences), first.Kind, first.Block, first.Index),
	}
}

// Replay rebuilds the chain of src from its genesis with nothing recorded,
// re-applies every stored call in order and compares call ids, outcomes,
// event hashes and per-block state roots. A divergent replay returns the
// report and an E_REPLAY_DIVERGED error.
func Replay(ctx context.Context, src Source, opts ...Option) (ReplayReport, error) {
	log, genesis, err := readLog(ctx, src)
	if err != nil {
		return ReplayReport{}, err
	}
	opts = append(opts, WithRecorder(noopRecorder{}), WithObserver(noopObserver{}))
	r, err := New(ctx, genesis, opts...)
	if err != nil {
		return ReplayReport{}, err
	}
	rep := r.replay(ctx, log)
	if rep.Diverged() {
		return rep, divergedError(rep)
	}
	return rep, nil
}

// Resume rebuilds the chain of src and returns the runtime positioned after
// the last stored call, bound to the recorder and observer in opts. Replayed
// calls are not recorded again.
func Resume(ctx context.Context, src Source, opts ...Option) (*Runtime, ReplayReport, error) {
	log, genesis, err := readLog(ctx, src)
	if err != nil {
		return nil, ReplayReport{}, err
	}
	r, err := New(ctx, genesis, opts...)
	if err != nil {
		return nil, ReplayReport{}, err
	}

	r.mu.Lock()
	recorder, observer := r.recorder, r.observer
	r.recorder, r.observer = noopRecorder{}, noopObserver{}
	r.mu.Unlock()

	rep := r.replay(ctx, log)

	r.mu.Lock()
	r.recorder, r.observer = recorder, observer
	r.mu.Unlock()

	if rep.Diverged() {
		return nil, rep, divergedError(rep)
	}
	r.logger.Info("runtime resumed", "block", rep.Head, "calls", rep.Calls, "blocks", rep.Blocks)
	return r, rep, nil
}

func readLog(ctx context.Context, src Source) (Log, Genesis, error) {
	log, err := src.ReadLog(ctx)
	if err != nil {
		return Log{}, Genesis{}, storeError("read log", err)
	}
	if len(log.Genesis) == 0 {
		return Log{}, Genesis{}, storeError("read log", fmt.Errorf("no genesis recorded"))
	}
	var genesis Genesis
	if err := json.Unmarshal(log.Genesis, &genesis); err != nil {
		return Log{}, Genesis{}, &Error{Code: ErrCodeDecode, Message: "decode stored genesis", Err: err}
	}
	return log, genesis, nil
}

func (r *Runtime) replay(ctx context.Context, log Log) ReplayReport {
	rep := ReplayReport{GenesisHash: r.GenesisHash()}
	if log.GenesisHash != r.GenesisHash() {
		rep.add(Divergence{Kind: DivergedGenesis, Want: log.GenesisHash, Got: r.GenesisHash()})
		return rep
	}

	calls := slices.Clone(log.Calls)
	slices.SortStableFunc(calls, func(a, b ir.CallRecord) int {
		return cmp.Or(cmp.Compare(a.Block, b.Block), cmp.Compare(a.Index, b.Index))
	})
	blocks := slices.Clone(log.Blocks)
	slices.SortStableFunc(blocks, func(a, b ir.BlockRecord) int {
		return cmp.Compare(a.Number, b.Number)
	})
	byCall := lo.GroupBy(log.Events, func(e ir.EventRecord) string { return e.CallID })
	finalizeEvents := lo.GroupBy(byCall[""], func(e ir.EventRecord) uint64 { return e.Block })

	next := 0
	for _, want := range blocks {
		for next < len(calls) && calls[next].Block <= want.Number {
			r.replayCall(ctx, &rep, calls[next], byCall[calls[next].ID])
			next++
		}
		r.mu.Lock()
		got, events, err := r.finalize(ctx)
		r.mu.Unlock()
		if err != nil {
			rep.add(Divergence{Block: want.Number, Kind: DivergedBlock, Want: want.StateRoot, Got: err.Error()})
			return rep
		}
		rep.Blocks++
		r.compareBlock(&rep, want, got, finalizeEvents[want.Number], events)
	}
	for ; next < len(calls); next++ {
		r.replayCall(ctx, &rep, calls[next], byCall[calls[next].ID])
	}

	rep.Head = r.CurrentBlock()
	if root, err := r.StateRoot(); err == nil {
		rep.StateRoot = root
	}
	return rep
}

func (r *Runtime) replayCall(ctx context.Context, rep *ReplayReport, want ir.CallRecord, wantEvents []ir.EventRecord) {
	rep.Calls++
	fail := func(kind DivergenceKind, w, g string) {
		rep.add(Divergence{Block: want.Block, Index: want.Index, Kind: kind, Want: w, Got: g})
	}

	if cur := uint64(r.CurrentBlock()); cur != want.Block {
		fail(DivergedBlock, fmt.Sprint(want.Block), fmt.Sprint(cur))
		return
	}
	call, err := recordedCall(want)
	if err != nil {
		fail(DivergedCall, want.ID, err.Error())
		return
	}
	got, err := r.Apply(ctx, call)
	if err != nil {
		fail(DivergedCall, want.ID, err.Error())
		return
	}
	if got.ID != want.ID {
		fail(DivergedCallID, want.ID, got.ID)
	}
	if got.Result != want.Result {
		fail(DivergedResult, want.Result, got.Result)
	}
	if d := eventDiff(wantEvents, got.Events); d != "" {
		rep.add(Divergence{Block: want.Block, Index: want.Index, Kind: DivergedEvents,
			Want: fmt.Sprint(len(wantEvents)), Got: fmt.Sprint(len(got.Events)), Diff: d})
	}
}

func (r *Runtime) compareBlock(rep *ReplayReport, want, got ir.BlockRecord, wantEvents, gotEvents []ir.EventRecord) {
	if got.Number != want.Number {
		rep.add(Divergence{Block: want.Number, Index: -1, Kind: DivergedBlock,
			Want: fmt.Sprint(want.Number), Got: fmt.Sprint(got.Number)})
		return
	}
	if got.StateRoot != want.StateRoot {
		rep.add(Divergence{Block: want.Number, Index: -1, Kind: DivergedStateRoot,
			Want: want.StateRoot, Got: got.StateRoot})
	}
	if d := eventDiff(wantEvents, gotEvents); d != "" {
		rep.add(Divergence{Block: want.Number, Index: -1, Kind: DivergedEvents,
			Want: fmt.Sprint(len(wantEvents)), Got: fmt.Sprint(len(gotEvents)), Diff: d})
	}
}

type eventKey struct {
	Index int
	Name  string
	Hash  string
}

func eventDiff(want, got []ir.EventRecord) string {
	key := func(e ir.EventRecord, _ int) eventKey {
		return eventKey{Index: e.Index, Name: e.Module + "." + e.Name, Hash: e.Hash}
	}
	w := lo.Map(want, key)
	g := lo.Map(got, key)
	slices.SortFunc(w, func(a, b eventKey) int { return cmp.Compare(a.Index, b.Index) })
	return gocmp.Diff(w, g)
}

// recordedCall rebuilds the call a record was produced from.
func recordedCall(rec ir.CallRecord) (Call, error) {
	originJSON, err := ir.MarshalCanonical(rec.Origin)
	if err != nil {
		return Call{}, fmt.Errorf("encode origin: %w", err)
	}
	origin, err := types.UnmarshalOrigin(originJSON)
	if err != nil {
		return Call{}, fmt.Errorf("decode origin: %w", err)
	}
	var args json.RawMessage
	if rec.Args != nil {
		if args, err = ir.MarshalCanonical(rec.Args); err != nil {
			return Call{}, fmt.Errorf("encode args: %w", err)
		}
	}
	return Call{Origin: origin, Method: rec.Method, Args: args}, nil
}
