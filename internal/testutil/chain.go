package testutil

import (
	"context"
	"testing"

	"github.com/roach88/treasury/internal/ir"
	"github.com/roach88/treasury/internal/runtime"
)

// Seal finalizes n blocks and returns their records.
func Seal(t testing.TB, rt *runtime.Runtime, n int) []ir.BlockRecord {
	t.Helper()
	blocks := make([]ir.BlockRecord, 0, n)
	for range n {
		rec, err := rt.FinalizeBlock(context.Background())
		if err != nil {
			t.Fatalf("testutil: finalize block %d: %v", rt.CurrentBlock(), err)
		}
		blocks = append(blocks, rec)
	}
	return blocks
}

// MustApply applies a call that must be included, and returns its receipt.
func MustApply(t testing.TB, rt *runtime.Runtime, call runtime.Call) runtime.Receipt {
	t.Helper()
	rc, err := rt.Apply(context.Background(), call)
	if err != nil {
		t.Fatalf("testutil: apply %s: %v", call.Method, err)
	}
	return rc
}
