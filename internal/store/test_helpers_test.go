package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/treasury/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestCall creates a call record with minimal required fields.
func createTestCall(id string, block uint64, index int, seq int64) ir.CallRecord {
	return ir.CallRecord{
		ID:      id,
		Block:   block,
		Index:   index,
		Seq:     seq,
		Session: "test-session",
		Origin:  ir.IRObject{"kind": ir.IRString("signed"), "account": ir.IRString("alice")},
		Method:  "ledger.transfer",
		Args:    ir.IRObject{"to": ir.IRString("bob"), "amount": ir.IRUint(5)},
		Result:  ir.OK,
	}
}

// createTestEvent creates an event record with minimal required fields.
func createTestEvent(hash, callID string, block uint64, index int) ir.EventRecord {
	return ir.EventRecord{
		Hash:    hash,
		CallID:  callID,
		Block:   block,
		Index:   index,
		Module:  "ledger",
		Name:    "Transfer",
		Payload: ir.IRObject{"amount": ir.IRUint(5)},
	}
}

func mustWriteGenesis(t *testing.T, s *Store) {
	t.Helper()
	if err := s.WriteGenesis(t.Context(), "genesis-hash", []byte(`{"start_block":1}`)); err != nil {
		t.Fatalf("WriteGenesis() failed: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
