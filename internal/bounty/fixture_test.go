package bounty

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/treasury/internal/ledger"
	"github.com/roach88/treasury/internal/membership"
	"github.com/roach88/treasury/internal/types"
)

type councilBudget struct {
	balance types.Balance
}

func (c *councilBudget) GetBudget() types.Balance   { return c.balance }
func (c *councilBudget) SetBudget(a types.Balance) { c.balance = a }

type fixture struct {
	clock   *types.FixedBlock
	ledger  *ledger.Ledger
	members *membership.Registry
	council *councilBudget
	events  *types.EventBuffer
	module  *Module
}

const (
	alice types.MemberID = 1
	bob   types.MemberID = 2
	carol types.MemberID = 3
)

func testConfig() Config {
	return Config{MinCherry: 10, MinFunding: 50, MaxWorkEntries: 2}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:   &types.FixedBlock{Block: 1},
		ledger:  ledger.New(),
		members: membership.NewRegistry(),
		council: &councilBudget{balance: 1000},
		events:  &types.EventBuffer{},
	}
	for _, m := range []membership.Member{
		{ID: alice, Controller: "alice"},
		{ID: bob, Controller: "bob", StakingAccounts: []types.AccountID{"bob-stash"}},
		{ID: carol, Controller: "carol"},
	} {
		require.NoError(t, f.members.Register(m))
	}
	for _, acc := range []types.AccountID{"alice", "bob", "carol", "bob-stash"} {
		require.NoError(t, f.ledger.Deposit(acc, 1000))
	}
	f.module = New(testConfig(), f.clock, f.ledger, f.members, f.council, WithEvents(f.events))
	return f
}

func signed(m types.MemberID) types.Origin {
	switch m {
	case alice:
		return types.Signed("alice")
	case bob:
		return types.Signed("bob")
	default:
		return types.Signed("carol")
	}
}

func period(n types.BlockNumber) *types.BlockNumber { return &n }

func account(a types.AccountID) *types.AccountID { return &a }

func memberParams(creator types.MemberID) CreationParams {
	return CreationParams{
		Creator:       types.Member(creator),
		Cherry:        100,
		MinAmount:     100,
		MaxAmount:     300,
		WorkPeriod:    1000,
		JudgingPeriod: 100,
		FundingPeriod: period(10),
	}
}

func (f *fixture) create(t *testing.T, origin types.Origin, p CreationParams) BountyID {
	t.Helper()
	require.NoError(t, f.module.CreateBounty(origin, p, []byte("metadata")))
	f.events.Drain()
	return BountyID(f.module.BountyCount())
}

func (f *fixture) fund(t *testing.T, m types.MemberID, id BountyID, amount types.Balance) {
	t.Helper()
	require.NoError(t, f.module.FundBounty(signed(m), types.Member(m), id, amount))
	f.events.Drain()
}

func (f *fixture) lastEvent(t *testing.T) types.Event {
	t.Helper()
	events := f.events.Drain()
	require.Len(t, events, 1, "a successful call emits exactly one event")
	return events[0]
}

// requireEscrowBalanced checks that the escrow holds exactly the bounty's
// outstanding cherry, creator funding, contributions and forfeited stakes.
func (f *fixture) requireEscrowBalanced(t *testing.T, id BountyID) {
	t.Helper()
	b, ok := f.module.Bounty(id)
	if !ok {
		require.Equal(t, types.Balance(0), f.ledger.FreeBalance(EscrowAccount(id)), "removed bounty leaves an empty escrow")
		return
	}
	want := b.CherryRemaining() + b.CreatorFundingRemaining() + b.SlashedStakes
	for _, c := range f.module.Contributions(id) {
		want += c.Amount
	}
	require.Equal(t, want, f.ledger.FreeBalance(EscrowAccount(id)))
}
