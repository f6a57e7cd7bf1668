package runtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/treasury/internal/budget"
	"github.com/roach88/treasury/internal/types"
)

const workingGroup budget.BudgetType = "working-group"

func testGenesis() Genesis {
	bob := types.AccountID("bob")
	return Genesis{
		StartBlock: 1,
		Params:     DefaultParams(),
		Accounts: []GenesisAccount{
			{ID: "alice", Balance: 1000},
			{ID: "bob", Balance: 1000},
			{ID: "carol", Balance: 1000},
			{ID: "bob-stash", Balance: 1000},
		},
		Members: []GenesisMember{
			{ID: 1, Controller: "alice", Handle: "alice"},
			{ID: 2, Controller: "bob", Handle: "bob", StakingAccounts: []types.AccountID{"bob-stash"}},
			{ID: 3, Controller: "carol"},
		},
		Budgets: []GenesisBudget{
			{Type: budget.CouncilBudget, Balance: 1000},
			{
				Type:    workingGroup,
				Balance: 100,
				Refill:  &GenesisRefill{Period: 2, Amount: 50},
				Recipients: []GenesisRecipient{
					{UserID: 2, RewardPerBlock: 10, Account: &bob},
				},
			},
		},
	}
}

func newTestRuntime(t *testing.T, g Genesis, opts ...Option) *Runtime {
	t.Helper()
	opts = append([]Option{WithSessionGenerator(NewFixedGenerator("test-session"))}, opts...)
	r, err := New(context.Background(), g, opts...)
	require.NoError(t, err)
	return r
}

func mustCall(t *testing.T, origin types.Origin, method string, args map[string]any) Call {
	t.Helper()
	data, err := json.Marshal(args)
	require.NoError(t, err)
	return Call{Origin: origin, Method: method, Args: data}
}

func createBountyCall(t *testing.T) Call {
	return mustCall(t, types.Signed("alice"), "bounty.create_bounty", map[string]any{
		"params": map[string]any{
			"creator":         "member:1",
			"cherry":          10,
			"entrant_stake":   0,
			"min_amount":      100,
			"max_amount":      500,
			"creator_funding": 0,
			"work_period":     100,
			"judging_period":  10,
		},
		"metadata": "fix the bridge",
	})
}

func fundBountyCall(t *testing.T, signer types.AccountID, funder string, amount int) Call {
	return mustCall(t, types.Signed(signer), "bounty.fund_bounty", map[string]any{
		"funder":    funder,
		"bounty_id": 1,
		"amount":    amount,
	})
}

func apply(t *testing.T, r *Runtime, c Call) Receipt {
	t.Helper()
	rc, err := r.Apply(context.Background(), c)
	require.NoError(t, err)
	return rc
}

func eventNames(rc Receipt) []string {
	names := make([]string, 0, len(rc.Events))
	for _, ev := range rc.Events {
		names = append(names, ev.Module+"."+ev.Name)
	}
	return names
}
