package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treasury/internal/testutil"
)

func TestExec(t *testing.T) {
	stdout, _, err := execute(t, "exec", bountyScenario)
	require.NoError(t, err)

	assert.Contains(t, stdout, "[1.0] signed:alice bounty.create_bounty -> ok")
	assert.Contains(t, stdout, "bounty.BountyMaxFundingReached")
	assert.Contains(t, stdout, "root ledger.mint rejected: E_UNKNOWN_CALL")
	assert.Contains(t, stdout, "── block 1 sealed (2 call(s))")
	assert.Contains(t, stdout, "✓ bounty_funding passed (head 3")
}

func TestExecJSON(t *testing.T) {
	stdout, _, err := execute(t, "exec", bountyScenario, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Pass  bool              `json:"pass"`
			Head  uint64            `json:"head"`
			Trace []json.RawMessage `json:"trace"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Pass)
	assert.Equal(t, uint64(3), resp.Data.Head)
	assert.Len(t, resp.Data.Trace, 6)
}

const failingScenario = `
name: overdraft
genesis:
  accounts:
    - {id: alice, balance: 10}
blocks:
  - calls:
      - origin: signed:alice
        method: ledger.transfer
        args: {to: bob, amount: 500}
`

func TestExecFailure(t *testing.T) {
	path := testutil.WriteFile(t, "overdraft.yaml", []byte(failingScenario))

	stdout, _, err := execute(t, "exec", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ overdraft failed")
	assert.Contains(t, stdout, "ledger.transfer result = ledger.InsufficientBalance")

	stdout, _, err = execute(t, "exec", path, "--format", "json")
	require.Error(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_SCENARIO_FAILED", resp.Error.Code)
}

func TestExecInvalidScenario(t *testing.T) {
	path := testutil.WriteFile(t, "bad.yaml", []byte("name: bad\n"))
	_, _, err := execute(t, "exec", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "exec", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExecRecordsLog(t *testing.T) {
	db := recordedLog(t)

	stdout, _, err := execute(t, "inspect", "blocks", "--db", db, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data []struct {
			Number uint64 `json:"number"`
			Calls  int    `json:"calls"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Data[0].Calls)
	assert.Equal(t, 1, resp.Data[1].Calls)
}
