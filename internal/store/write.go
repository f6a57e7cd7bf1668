package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/treasury/internal/ir"
)

// WriteGenesis binds the log to genesis. Writing the bound genesis again is
// a no-op; any other hash fails with ErrGenesisMismatch.
func (s *Store) WriteGenesis(ctx context.Context, hash string, genesis []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write genesis: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO genesis (id, hash, document, ir_version, runtime_version)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, hash, string(genesis), ir.IRVersion, ir.RuntimeVersion)
	if err != nil {
		return fmt.Errorf("write genesis: %w", err)
	}

	var bound string
	if err := tx.QueryRowContext(ctx, `SELECT hash FROM genesis WHERE id = 1`).Scan(&bound); err != nil {
		return fmt.Errorf("write genesis: select bound: %w", err)
	}
	if bound != hash {
		return fmt.Errorf("%w: bound %s, got %s", ErrGenesisMismatch, bound, hash)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write genesis: commit: %w", err)
	}
	return nil
}

// WriteCall inserts an applied call and its events in one transaction.
// Uses ON CONFLICT DO NOTHING for idempotency: rewriting a recorded call is
// silently ignored.
func (s *Store) WriteCall(ctx context.Context, call ir.CallRecord, events []ir.EventRecord) error {
	origin, err := marshalObject(call.Origin)
	if err != nil {
		return fmt.Errorf("write call: marshal origin: %w", err)
	}
	args, err := marshalValue(call.Args)
	if err != nil {
		return fmt.Errorf("write call: marshal args: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write call: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO calls
		(id, block, idx, seq, session, origin, method, args, result, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		call.ID,
		call.Block,
		call.Index,
		call.Seq,
		call.Session,
		origin,
		call.Method,
		args,
		call.Result,
		call.Message,
	)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}

	if err := writeEvents(ctx, tx, events); err != nil {
		return fmt.Errorf("write call: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write call: commit: %w", err)
	}
	return nil
}

// WriteBlock inserts a finalized block and its finalization events in one
// transaction.
func (s *Store) WriteBlock(ctx context.Context, block ir.BlockRecord, events []ir.EventRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write block: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeEvents(ctx, tx, events); err != nil {
		return fmt.Errorf("write block: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO blocks (number, state_root, calls, events)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(number) DO NOTHING
	`, block.Number, block.StateRoot, block.Calls, block.Events)
	if err != nil {
		return fmt.Errorf("write block: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write block: commit: %w", err)
	}
	return nil
}

func writeEvents(ctx context.Context, tx *sql.Tx, events []ir.EventRecord) error {
	for _, ev := range events {
		payload, err := marshalObject(ev.Payload)
		if err != nil {
			return fmt.Errorf("marshal event %s.%s: %w", ev.Module, ev.Name, err)
		}
		var callID sql.NullString
		if ev.CallID != "" {
			callID = sql.NullString{String: ev.CallID, Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (hash, call_id, block, idx, module, name, payload)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, ev.Hash, callID, ev.Block, ev.Index, ev.Module, ev.Name, payload)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", ev.Hash, err)
		}
	}
	return nil
}
