package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treasury/internal/store"
)

func TestRun_Testdata(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(t.Context(), scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %s", strings.Join(result.Errors, "\n"))
			assert.Empty(t, result.Errors)
			assert.NotEmpty(t, result.StateRoot)
		})
	}
}

const transferScenario = `
name: transfer
genesis:
  accounts:
    - {id: alice, balance: 100}
blocks:
  - calls:
      - origin: signed:alice
        method: ledger.transfer
        args: {to: bob, amount: 25}
`

func TestRun_Trace(t *testing.T) {
	scenario, err := ParseScenario([]byte(transferScenario))
	require.NoError(t, err)

	result, err := Run(t.Context(), scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)

	require.Len(t, result.Trace, 2)
	call := result.Trace[0]
	assert.Equal(t, TraceCall, call.Type)
	assert.Equal(t, uint64(1), call.Block)
	assert.Equal(t, "signed:alice", call.Origin)
	assert.Equal(t, "ledger.transfer", call.Method)
	assert.Equal(t, "ok", call.Result)
	require.Len(t, call.Events, 1)
	assert.Equal(t, "ledger.Transfer", call.Events[0].Name)

	block := result.Trace[1]
	assert.Equal(t, TraceBlock, block.Type)
	assert.Equal(t, 1, block.Calls)
	assert.Equal(t, uint64(2), result.Head)
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/budget_rewards.yaml")
	require.NoError(t, err)

	first, err := Run(t.Context(), scenario)
	require.NoError(t, err)
	second, err := Run(t.Context(), scenario)
	require.NoError(t, err)

	assert.Equal(t, first.StateRoot, second.StateRoot)
	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_UnsealedBlock(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: unsealed
blocks:
  - number: 3
    seal: false
`))
	require.NoError(t, err)

	result, err := Run(t.Context(), scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)

	// Blocks 1 and 2 are sealed while advancing; block 3 stays open.
	require.Len(t, result.Trace, 2)
	assert.Equal(t, uint64(1), result.Trace[0].Block)
	assert.Equal(t, uint64(2), result.Trace[1].Block)
	assert.Equal(t, uint64(3), result.Head)
}

func TestRun_FailedExpectations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "wrong result",
			content: transferScenario + `        expect:
          result: ledger.InsufficientBalance
`,
			wantErr: "ledger.transfer result = ok",
		},
		{
			name: "wrong events",
			content: transferScenario + `        expect:
          events: [ledger.Minted]
`,
			wantErr: "events = [ledger.Transfer], expected [ledger.Minted]",
		},
		{
			name: "unexpected rejection",
			content: `
name: rejected
blocks:
  - calls:
      - origin: root
        method: ledger.mint
`,
			wantErr: "ledger.mint rejected with E_UNKNOWN_CALL",
		},
		{
			name: "expected rejection applied",
			content: transferScenario + `        expect:
          rejected: E_DECODE
`,
			wantErr: "expected rejection E_DECODE",
		},
		{
			name: "account assertion",
			content: transferScenario + `assertions:
  - type: account
    account: bob
    expect: {free: 30}
`,
			wantErr: "Assertion failed: account",
		},
		{
			name: "missing bounty",
			content: transferScenario + `assertions:
  - type: bounty
    bounty: 1
    expect: {stage: Funding}
`,
			wantErr: "Assertion failed: bounty",
		},
		{
			name: "final state",
			content: transferScenario + `assertions:
  - type: final_state
    table: calls
    where: {block: 1, idx: 0}
    expect: {result: ledger.InsufficientBalance}
`,
			wantErr: "Assertion failed: final_state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario, err := ParseScenario([]byte(tt.content))
			require.NoError(t, err)

			result, err := Run(t.Context(), scenario)
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, strings.Join(result.Errors, "\n"), tt.wantErr)
		})
	}
}

func TestRun_InvalidGenesis(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: bad-genesis
genesis:
  accounts:
    - {id: alice, balance: -5}
blocks:
  - calls: []
`))
	require.NoError(t, err)

	_, err = Run(t.Context(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario genesis")
}

func TestRun_WithStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "scenario.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	scenario, err := LoadScenario("testdata/scenarios/bounty_funding.yaml")
	require.NoError(t, err)

	result, err := Run(t.Context(), scenario, WithStore(st))
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)

	// The store stays open and holds the recorded chain.
	counts, err := st.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Calls)
	assert.Equal(t, 2, counts.Blocks)
}
