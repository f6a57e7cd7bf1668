package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/treasury/internal/testutil"
)

const bountyScenario = "../harness/testdata/scenarios/bounty_funding.yaml"

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func testGenesis() *testutil.GenesisBuilder {
	return testutil.NewGenesis().
		Account("alice", 1000).
		Account("bob", 1000).
		Member(1, "alice").
		Member(2, "bob").
		Budget("council", 500).
		Budget("working-group", 100).
		PullRecipient(2, 5, "bob")
}

// recordedLog executes the bounty scenario into a fresh log and returns
// its path.
func recordedLog(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "chain.db")
	_, _, err := execute(t, "exec", bountyScenario, "--db", db)
	require.NoError(t, err)
	return db
}
