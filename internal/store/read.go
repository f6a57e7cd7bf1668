package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/treasury/internal/ir"
	"github.com/roach88/treasury/internal/runtime"
)

// ReadGenesis returns the hash and canonical document of the bound genesis.
// Returns ErrNoGenesis for an unbound log.
func (s *Store) ReadGenesis(ctx context.Context) (string, []byte, error) {
	var hash, doc, irVersion string
	err := s.db.QueryRowContext(ctx, `
		SELECT hash, document, ir_version FROM genesis WHERE id = 1
	`).Scan(&hash, &doc, &irVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNoGenesis
	}
	if err != nil {
		return "", nil, fmt.Errorf("read genesis: %w", err)
	}
	if irVersion != ir.IRVersion {
		return "", nil, fmt.Errorf("read genesis: log written with ir version %s, runtime reads %s", irVersion, ir.IRVersion)
	}
	return hash, []byte(doc), nil
}

// CallFilter selects calls. Zero fields match everything.
type CallFilter struct {
	Block  *uint64
	Method string
	Result string
}

// ReadCalls returns the calls matching f ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) ReadCalls(ctx context.Context, f CallFilter) ([]ir.CallRecord, error) {
	var where []string
	var args []any
	if f.Block != nil {
		where = append(where, "block = ?")
		args = append(args, *f.Block)
	}
	if f.Method != "" {
		where = append(where, "method = ?")
		args = append(args, f.Method)
	}
	if f.Result != "" {
		where = append(where, "result = ?")
		args = append(args, f.Result)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, block, idx, seq, session, origin, method, args, result, message
		FROM calls`+whereClause(where)+`
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := []ir.CallRecord{}
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}

// ReadCall retrieves a single call by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadCall(ctx context.Context, id string) (ir.CallRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, block, idx, seq, session, origin, method, args, result, message
		FROM calls
		WHERE id = ?
	`, id)
	return scanCall(row)
}

// EventFilter selects events. Zero fields match everything.
type EventFilter struct {
	Block  *uint64
	CallID string
	Module string
	Name   string
}

// ReadEvents returns the events matching f ordered by block ASC, idx ASC.
func (s *Store) ReadEvents(ctx context.Context, f EventFilter) ([]ir.EventRecord, error) {
	var where []string
	var args []any
	if f.Block != nil {
		where = append(where, "block = ?")
		args = append(args, *f.Block)
	}
	if f.CallID != "" {
		where = append(where, "call_id = ?")
		args = append(args, f.CallID)
	}
	if f.Module != "" {
		where = append(where, "module = ?")
		args = append(args, f.Module)
	}
	if f.Name != "" {
		where = append(where, "name = ?")
		args = append(args, f.Name)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, call_id, block, idx, module, name, payload
		FROM events`+whereClause(where)+`
		ORDER BY block ASC, idx ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []ir.EventRecord{}
	for rows.Next() {
		var ev ir.EventRecord
		var callID sql.NullString
		var payload string
		if err := rows.Scan(&ev.Hash, &callID, &ev.Block, &ev.Index, &ev.Module, &ev.Name, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.CallID = callID.String
		if ev.Payload, err = unmarshalObject(payload); err != nil {
			return nil, fmt.Errorf("event %s payload: %w", ev.Hash, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadBlocks returns every finalized block in number order.
func (s *Store) ReadBlocks(ctx context.Context) ([]ir.BlockRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, state_root, calls, events
		FROM blocks
		ORDER BY number ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	blocks := []ir.BlockRecord{}
	for rows.Next() {
		var b ir.BlockRecord
		if err := rows.Scan(&b.Number, &b.StateRoot, &b.Calls, &b.Events); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	return blocks, nil
}

// Head returns the last finalized block. ok is false before the first block.
func (s *Store) Head(ctx context.Context) (block ir.BlockRecord, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT number, state_root, calls, events
		FROM blocks
		ORDER BY number DESC
		LIMIT 1
	`).Scan(&block.Number, &block.StateRoot, &block.Calls, &block.Events)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.BlockRecord{}, false, nil
	}
	if err != nil {
		return ir.BlockRecord{}, false, fmt.Errorf("read head: %w", err)
	}
	return block, true, nil
}

// Counts is the size of the log.
type Counts struct {
	Calls  int `json:"calls"`
	Events int `json:"events"`
	Blocks int `json:"blocks"`
}

// Count returns the number of rows of each record kind.
func (s *Store) Count(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM calls),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM blocks)
	`).Scan(&c.Calls, &c.Events, &c.Blocks)
	if err != nil {
		return Counts{}, fmt.Errorf("count log: %w", err)
	}
	return c, nil
}

// ReadLog reads the whole log for replay. It implements runtime.Source.
func (s *Store) ReadLog(ctx context.Context) (runtime.Log, error) {
	hash, genesis, err := s.ReadGenesis(ctx)
	if err != nil {
		return runtime.Log{}, err
	}
	calls, err := s.ReadCalls(ctx, CallFilter{})
	if err != nil {
		return runtime.Log{}, err
	}
	events, err := s.ReadEvents(ctx, EventFilter{})
	if err != nil {
		return runtime.Log{}, err
	}
	blocks, err := s.ReadBlocks(ctx)
	if err != nil {
		return runtime.Log{}, err
	}
	return runtime.Log{
		GenesisHash: hash,
		Genesis:     genesis,
		Calls:       calls,
		Events:      events,
		Blocks:      blocks,
	}, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND ")
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCall(row scanner) (ir.CallRecord, error) {
	var c ir.CallRecord
	var origin, args string
	err := row.Scan(&c.ID, &c.Block, &c.Index, &c.Seq, &c.Session, &origin, &c.Method, &args, &c.Result, &c.Message)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.CallRecord{}, err
		}
		return ir.CallRecord{}, fmt.Errorf("scan call: %w", err)
	}
	if c.Origin, err = unmarshalObject(origin); err != nil {
		return ir.CallRecord{}, fmt.Errorf("call %s origin: %w", c.ID, err)
	}
	if c.Args, err = unmarshalValue(args); err != nil {
		return ir.CallRecord{}, fmt.Errorf("call %s args: %w", c.ID, err)
	}
	return c, nil
}
