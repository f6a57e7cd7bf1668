package cli

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treasury/internal/runtime"
	"github.com/roach88/treasury/internal/store"
)

func TestReplay(t *testing.T) {
	db := recordedLog(t)

	stdout, _, err := execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Replay Summary: 3 call(s) in 2 block(s)")
	assert.Contains(t, stdout, "Head:    3")
	assert.Contains(t, stdout, "✓ Log verified deterministic")
}

func TestReplayJSON(t *testing.T) {
	db := recordedLog(t)

	stdout, _, err := execute(t, "replay", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string               `json:"status"`
		Data   runtime.ReplayReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Calls)
	assert.Equal(t, 2, resp.Data.Blocks)
	assert.False(t, resp.Data.Diverged())
}

func TestReplayDiverged(t *testing.T) {
	db := recordedLog(t)

	raw, err := sql.Open("sqlite3", db)
	require.NoError(t, err)
	_, err = raw.Exec(`UPDATE blocks SET state_root = 'tampered' WHERE number = 1`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	stdout, _, err := execute(t, "replay", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "state_root")
	assert.Contains(t, stdout, "tampered")
	assert.Contains(t, stdout, "✗ Determinism verification failed: 1 divergence(s)")

	stdout, _, err = execute(t, "replay", "--db", db, "--format", "json")
	require.Error(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_DETERMINISM", resp.Error.Code)
}

func TestReplayEmptyLog(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, _, err = execute(t, "replay", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplayRequiresDB(t *testing.T) {
	_, _, err := execute(t, "replay")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "TREASURY_DB")
}

func TestReplayDBFromEnvironment(t *testing.T) {
	t.Setenv("TREASURY_DB", recordedLog(t))

	_, _, err := execute(t, "replay")
	require.NoError(t, err)
}
