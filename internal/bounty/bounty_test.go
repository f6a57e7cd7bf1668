package bounty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treasury/internal/auth"
	"github.com/roach88/treasury/internal/types"
)

func TestCreateBountyByCouncilReachesMaxOnCreation(t *testing.T) {
	f := newFixture(t)
	params := CreationParams{
		Creator:        types.Council(),
		Cherry:         100,
		MinAmount:      100,
		MaxAmount:      100,
		CreatorFunding: 100,
		WorkPeriod:     10,
		JudgingPeriod:  10,
	}

	require.NoError(t, f.module.CreateBounty(types.Root(), params, []byte("council bounty")))
	assert.Equal(t, BountyCreated{BountyID: 1, Params: params, Metadata: "council bounty"}, f.lastEvent(t))

	b, ok := f.module.Bounty(1)
	require.True(t, ok)
	assert.Equal(t, MaxFundingReached{ReachedAt: 1, ReachedOnCreation: true}, b.Milestone)
	assert.Equal(t, types.Balance(800), f.council.balance)
	assert.Equal(t, types.Balance(200), f.ledger.FreeBalance(EscrowAccount(1)))
	f.requireEscrowBalanced(t, 1)

	err := f.module.CancelBounty(types.Root(), types.Council(), 1)
	assert.ErrorIs(t, err, ErrInvalidBountyStage)
}

func TestCreateBountyByMember(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(alice), memberParams(alice))

	assert.Equal(t, BountyID(1), id)
	b, _ := f.module.Bounty(id)
	assert.Equal(t, Created{CreatedAt: 1}, b.Milestone)
	assert.Equal(t, types.Balance(900), f.ledger.FreeBalance("alice"))
	assert.Equal(t, types.Balance(100), f.ledger.FreeBalance(EscrowAccount(id)))
	assert.Equal(t, StageFunding, b.Stage(1))
}

func TestCreateBountyValidation(t *testing.T) {
	tests := []struct {
		name    string
		origin  types.Origin
		mutate  func(*CreationParams)
		wantErr error
	}{
		{"cherry below minimum", signed(alice), func(p *CreationParams) { p.Cherry = 0 }, ErrCherryLessThenMinimumAllowed},
		{"zero work period", signed(alice), func(p *CreationParams) { p.WorkPeriod = 0 }, ErrWorkPeriodCannotBeZero},
		{"zero judging period", signed(alice), func(p *CreationParams) { p.JudgingPeriod = 0 }, ErrJudgingPeriodCannotBeZero},
		{"zero funding period", signed(alice), func(p *CreationParams) { p.FundingPeriod = period(0) }, ErrFundingPeriodCannotBeZero},
		{"min above max", signed(alice), func(p *CreationParams) { p.MinAmount = 400 }, ErrMinFundingAmountCannotBeGreaterThanMaxAmount},
		{"insufficient member balance", signed(alice), func(p *CreationParams) { p.CreatorFunding = 901 }, ErrInsufficientBalanceForBounty},
		{"insufficient council budget", types.Root(), func(p *CreationParams) {
			p.Creator = types.Council()
			p.CreatorFunding = 901
		}, ErrInsufficientBalanceForBounty},
		{"council via signed origin", signed(alice), func(p *CreationParams) { p.Creator = types.Council() }, auth.ErrBadOrigin},
		{"member via root", types.Root(), func(p *CreationParams) {}, auth.ErrBadOrigin},
		{"member via other account", signed(bob), func(p *CreationParams) {}, auth.ErrNotMemberAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			params := memberParams(alice)
			tt.mutate(&params)

			err := f.module.CreateBounty(tt.origin, params, nil)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, uint64(0), f.module.BountyCount(), "bounty count unchanged")
			assert.Empty(t, f.module.Bounties())
			assert.Empty(t, f.events.Events())
			assert.Equal(t, types.Balance(1000), f.ledger.FreeBalance("alice"))
			assert.Equal(t, types.Balance(1000), f.council.balance)
		})
	}
}

func TestFundBountyUntilMax(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(alice), memberParams(alice))

	require.NoError(t, f.module.FundBounty(signed(bob), types.Member(bob), id, 100))
	assert.Equal(t, BountyFunded{BountyID: id, Funder: types.ActorJSON{Actor: types.Member(bob)}, Amount: 100}, f.lastEvent(t))

	require.NoError(t, f.module.FundBounty(types.Root(), types.Council(), id, 50))
	assert.Equal(t, "BountyFunded", f.lastEvent(t).Name())
	assert.Equal(t, types.Balance(950), f.council.balance)

	require.NoError(t, f.module.FundBounty(signed(carol), types.Member(carol), id, 150))
	assert.Equal(t, BountyMaxFundingReached{BountyID: id, Funder: types.ActorJSON{Actor: types.Member(carol)}, Amount: 150}, f.lastEvent(t))

	b, _ := f.module.Bounty(id)
	assert.Equal(t, types.Balance(300), b.TotalFunding)
	assert.Equal(t, MaxFundingReached{ReachedAt: 1}, b.Milestone)
	assert.Equal(t, StageWorkSubmission, b.Stage(1))
	f.requireEscrowBalanced(t, id)

	c, ok := f.module.Contribution(id, types.Member(bob))
	require.True(t, ok)
	assert.Equal(t, types.Balance(100), c.Amount)
	assert.Len(t, f.module.Contributions(id), 3)

	err := f.module.FundBounty(signed(bob), types.Member(bob), id, 100)
	assert.ErrorIs(t, err, ErrInvalidBountyStage)
	assert.Empty(t, f.events.Events())
}

func TestFundBountyAccumulatesContribution(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(alice), memberParams(alice))
	f.fund(t, bob, id, 50)
	f.fund(t, bob, id, 60)

	c, _ := f.module.Contribution(id, types.Member(bob))
	assert.Equal(t, types.Balance(110), c.Amount)
	assert.Equal(t, types.Balance(890), f.ledger.FreeBalance("bob"))
	f.requireEscrowBalanced(t, id)
}

func TestFundBountyFailures(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(alice), memberParams(alice))

	tests := []struct {
		name    string
		origin  types.Origin
		funder  types.Actor
		id      BountyID
		amount  types.Balance
		wantErr error
	}{
		{"unknown bounty", signed(bob), types.Member(bob), 9, 100, ErrBountyDoesntExist},
		{"zero amount", signed(bob), types.Member(bob), id, 0, ErrZeroFundingAmount},
		{"below minimum", signed(bob), types.Member(bob), id, 10, ErrFundingLessThenMinimumAllowed},
		{"insufficient balance", signed(bob), types.Member(bob), id, 1001, ErrInsufficientBalanceForBounty},
		{"member via root", types.Root(), types.Member(bob), id, 100, auth.ErrBadOrigin},
		{"council short of budget", types.Root(), types.Council(), id, 1001, ErrInsufficientBalanceForBounty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.module.FundBounty(tt.origin, tt.funder, tt.id, tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.events.Events())
		})
	}
	_, funded := f.module.Contribution(id, types.Member(bob))
	assert.False(t, funded)

	f.clock.Block = 12
	err := f.module.FundBounty(signed(bob), types.Member(bob), id, 100)
	assert.ErrorIs(t, err, ErrInvalidBountyStage, "funding period is over")
}

func TestFundingPeriodExpiry(t *testing.T) {
	t.Run("below min amount fails", func(t *testing.T) {
		f := newFixture(t)
		id := f.create(t, signed(alice), memberParams(alice))
		f.fund(t, bob, id, 50)

		stage, _ := f.module.Stage(id)
		assert.Equal(t, StageFunding, stage)
		f.clock.Block = 11
		stage, _ = f.module.Stage(id)
		assert.Equal(t, StageFunding, stage, "the last block of the funding period still accepts funding")
		f.clock.Block = 12
		stage, _ = f.module.Stage(id)
		assert.Equal(t, StageFundingExpired, stage)
	})

	t.Run("min amount reached opens work submission", func(t *testing.T) {
		f := newFixture(t)
		id := f.create(t, signed(alice), memberParams(alice))
		f.fund(t, bob, id, 100)
		b, _ := f.module.Bounty(id)

		start, ok := b.WorkPeriodStart()
		require.True(t, ok)
		assert.Equal(t, types.BlockNumber(11), start)
		assert.Equal(t, StageWorkSubmission, b.Stage(12))
		assert.Equal(t, StageWorkSubmission, b.Stage(1011))
		assert.Equal(t, StageJudgment, b.Stage(1012))
		assert.Equal(t, StageJudgment, b.Stage(1111))
		assert.Equal(t, StageWithdrawalWindow, b.Stage(1112))
	})
}

func TestCancelBounty(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(alice), memberParams(alice))

	assert.ErrorIs(t, f.module.CancelBounty(signed(bob), types.Member(bob), id), ErrNotBountyActor)
	assert.ErrorIs(t, f.module.CancelBounty(types.Root(), types.Council(), id), ErrNotBountyActor)
	assert.ErrorIs(t, f.module.CancelBounty(signed(alice), types.Member(alice), 9), ErrBountyDoesntExist)
	assert.ErrorIs(t, f.module.CancelBounty(types.Root(), types.Member(alice), id), auth.ErrBadOrigin)

	require.NoError(t, f.module.CancelBounty(signed(alice), types.Member(alice), id))
	assert.Equal(t, BountyCanceled{BountyID: id, Creator: types.ActorJSON{Actor: types.Member(alice)}}, f.lastEvent(t))
	b, _ := f.module.Bounty(id)
	assert.Equal(t, Canceled{}, b.Milestone)

	assert.ErrorIs(t, f.module.CancelBounty(signed(alice), types.Member(alice), id), ErrInvalidBountyStage)
	assert.ErrorIs(t, f.module.VetoBounty(types.Root(), id), ErrInvalidBountyStage)
}

func TestCancelFailsOnceFunded(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(alice), memberParams(alice))
	f.fund(t, bob, id, 50)

	assert.ErrorIs(t, f.module.CancelBounty(signed(alice), types.Member(alice), id), ErrInvalidBountyStage)
	assert.ErrorIs(t, f.module.VetoBounty(types.Root(), id), ErrInvalidBountyStage)
}

func TestVetoThenCreatorWithdrawalRemovesBounty(t *testing.T) {
	f := newFixture(t)
	params := memberParams(alice)
	params.CreatorFunding = 50
	id := f.create(t, signed(alice), params)
	assert.Equal(t, types.Balance(850), f.ledger.FreeBalance("alice"))

	assert.ErrorIs(t, f.module.VetoBounty(signed(alice), id), auth.ErrBadOrigin)
	assert.ErrorIs(t, f.module.VetoBounty(types.Root(), 9), ErrBountyDoesntExist)
	require.NoError(t, f.module.VetoBounty(types.Root(), id))
	assert.Equal(t, BountyVetoed{BountyID: id}, f.lastEvent(t))
	stage, _ := f.module.Stage(id)
	assert.Equal(t, StageCanceled, stage)

	require.NoError(t, f.module.WithdrawCreatorFunding(signed(alice), types.Member(alice), id))
	assert.Equal(t, BountyRemoved{BountyID: id}, f.lastEvent(t))
	assert.Equal(t, types.Balance(1000), f.ledger.FreeBalance("alice"))
	_, exists := f.module.Bounty(id)
	assert.False(t, exists)
	f.requireEscrowBalanced(t, id)
	assert.Equal(t, uint64(1), f.module.BountyCount(), "ids are never reused")
}

func TestWithdrawFundingSplitsCherry(t *testing.T) {
	f := newFixture(t)
	params := memberParams(alice)
	params.MinAmount = 400
	params.MaxAmount = 1000
	id := f.create(t, signed(alice), params)
	f.fund(t, bob, id, 50)
	require.NoError(t, f.module.FundBounty(types.Root(), types.Council(), id, 150))
	f.fund(t, carol, id, 100)
	f.events.Drain()

	assert.ErrorIs(t, f.module.WithdrawFunding(signed(bob), types.Member(bob), id), ErrInvalidBountyStage)

	f.clock.Block = 12
	assert.ErrorIs(t, f.module.WithdrawFunding(signed(alice), types.Member(alice), id), ErrNotBountyFunder)
	assert.ErrorIs(t, f.module.WithdrawFunding(signed(bob), types.Member(bob), 9), ErrBountyDoesntExist)

	require.NoError(t, f.module.WithdrawFunding(signed(bob), types.Member(bob), id))
	assert.Equal(t, BountyFundingWithdrawal{BountyID: id, Funder: types.ActorJSON{Actor: types.Member(bob)}, Amount: 50, CherryShare: 16}, f.lastEvent(t))
	assert.Equal(t, types.Balance(1016), f.ledger.FreeBalance("bob"))
	f.requireEscrowBalanced(t, id)

	require.NoError(t, f.module.WithdrawFunding(types.Root(), types.Council(), id))
	assert.Equal(t, types.Balance(50), f.lastEvent(t).(BountyFundingWithdrawal).CherryShare)
	assert.Equal(t, types.Balance(1050), f.council.balance)
	f.requireEscrowBalanced(t, id)

	require.NoError(t, f.module.WithdrawFunding(signed(carol), types.Member(carol), id))
	assert.Equal(t, BountyRemoved{BountyID: id}, f.lastEvent(t), "the last funder takes the rest of the cherry and empties the escrow")
	assert.Equal(t, types.Balance(1034), f.ledger.FreeBalance("carol"))
	f.requireEscrowBalanced(t, id)

	assert.ErrorIs(t, f.module.WithdrawCreatorFunding(signed(alice), types.Member(alice), id), ErrBountyDoesntExist)
}

func TestWithdrawCreatorFunding(t *testing.T) {
	f := newFixture(t)
	params := memberParams(alice)
	params.CreatorFunding = 50
	params.MinAmount = 400
	params.MaxAmount = 1000
	id := f.create(t, signed(alice), params)
	f.fund(t, bob, id, 100)

	assert.ErrorIs(t, f.module.WithdrawCreatorFunding(signed(alice), types.Member(alice), id), ErrInvalidBountyStage)

	f.clock.Block = 12
	assert.ErrorIs(t, f.module.WithdrawCreatorFunding(signed(carol), types.Member(carol), id), ErrNotBountyActor)

	require.NoError(t, f.module.WithdrawCreatorFunding(signed(alice), types.Member(alice), id))
	assert.Equal(t, BountyCreatorFundingWithdrawal{BountyID: id, Creator: types.ActorJSON{Actor: types.Member(alice)}, Amount: 50}, f.lastEvent(t))
	assert.Equal(t, types.Balance(900), f.ledger.FreeBalance("alice"))
	f.requireEscrowBalanced(t, id)

	stage, _ := f.module.Stage(id)
	assert.Equal(t, StageCreatorFundsWithdrawn, stage)
	assert.ErrorIs(t, f.module.WithdrawCreatorFunding(signed(alice), types.Member(alice), id), ErrInvalidBountyStage)

	require.NoError(t, f.module.WithdrawFunding(signed(bob), types.Member(bob), id))
	assert.Equal(t, BountyRemoved{BountyID: id}, f.lastEvent(t))
	assert.Equal(t, types.Balance(1100), f.ledger.FreeBalance("bob"))
	f.requireEscrowBalanced(t, id)
}

func TestWithdrawCreatorFundingNothingToWithdraw(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(alice), memberParams(alice))
	f.fund(t, bob, id, 50)
	f.clock.Block = 12

	err := f.module.WithdrawCreatorFunding(signed(alice), types.Member(alice), id)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)
}

func stakedParams() CreationParams {
	return CreationParams{
		Creator:        types.Member(carol),
		Cherry:         10,
		EntrantStake:   100,
		MinAmount:      100,
		MaxAmount:      100,
		CreatorFunding: 100,
		WorkPeriod:     1000,
		JudgingPeriod:  10,
	}
}

func TestAnnounceWorkEntry(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(carol), stakedParams())

	require.NoError(t, f.module.AnnounceWorkEntry(signed(bob), bob, id, account("bob-stash")))
	assert.Equal(t, WorkEntryAnnounced{BountyID: id, EntryID: 1, MemberID: bob, StakingAccount: account("bob-stash")}, f.lastEvent(t))
	assert.Equal(t, types.Balance(100), f.ledger.ReservedBalance("bob-stash"))
	assert.Equal(t, types.Balance(900), f.ledger.FreeBalance("bob-stash"))
	f.requireEscrowBalanced(t, id)

	entries := f.module.WorkEntries(id)
	require.Len(t, entries, 1)
	assert.Equal(t, WorkEntry{ID: 1, BountyID: id, MemberID: bob, StakingAccount: account("bob-stash"), StakedAmount: 100, SubmittedAt: 1}, entries[0])
}

func TestAnnounceWorkEntryFailures(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(carol), stakedParams())
	require.NoError(t, f.module.AnnounceWorkEntry(signed(bob), bob, id, account("bob-stash")))
	f.events.Drain()

	tests := []struct {
		name    string
		origin  types.Origin
		member  types.MemberID
		id      BountyID
		stake   *types.AccountID
		wantErr error
	}{
		{"root origin", types.Root(), bob, id, account("bob"), auth.ErrBadOrigin},
		{"unknown bounty", signed(bob), bob, 9, account("bob"), ErrBountyDoesntExist},
		{"no staking account", signed(alice), alice, id, nil, ErrNoStakingAccountProvided},
		{"foreign staking account", signed(alice), alice, id, account("bob"), ErrInvalidStakingAccountForMember},
		{"staking account already used", signed(bob), bob, id, account("bob-stash"), ErrConflictingStakes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.module.AnnounceWorkEntry(tt.origin, tt.member, tt.id, tt.stake)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.events.Events())
		})
	}
	assert.Len(t, f.module.WorkEntries(id), 1)
}

func TestAnnounceWorkEntryInsufficientStake(t *testing.T) {
	f := newFixture(t)
	params := stakedParams()
	params.EntrantStake = 1001
	id := f.create(t, signed(carol), params)

	err := f.module.AnnounceWorkEntry(signed(alice), alice, id, account("alice"))
	assert.ErrorIs(t, err, ErrInsufficientBalanceForStake)
	assert.Equal(t, types.Balance(0), f.ledger.ReservedBalance("alice"))
}

func TestAnnounceWorkEntryLimitAndStage(t *testing.T) {
	f := newFixture(t)
	params := stakedParams()
	params.EntrantStake = 0
	id := f.create(t, signed(carol), params)

	require.NoError(t, f.module.AnnounceWorkEntry(signed(bob), bob, id, account("bob")))
	require.NoError(t, f.module.AnnounceWorkEntry(signed(bob), bob, id, account("bob")), "zero stake entries may share an account")
	err := f.module.AnnounceWorkEntry(signed(alice), alice, id, nil)
	assert.ErrorIs(t, err, ErrMaxWorkEntryLimitReached)

	funding := f.create(t, signed(alice), memberParams(alice))
	err = f.module.AnnounceWorkEntry(signed(bob), bob, funding, account("bob"))
	assert.ErrorIs(t, err, ErrInvalidBountyStage)
}

func TestWithdrawWorkEntrySlashesByElapsedBlocks(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(carol), stakedParams())
	require.NoError(t, f.module.AnnounceWorkEntry(signed(bob), bob, id, account("bob-stash")))
	f.events.Drain()

	f.clock.Block = 501
	require.NoError(t, f.module.WithdrawWorkEntry(signed(bob), bob, id, 1))
	assert.Equal(t, WorkEntryWithdrawn{BountyID: id, EntryID: 1, MemberID: bob, Refund: 50, Slashed: 50}, f.lastEvent(t))
	assert.Equal(t, types.Balance(950), f.ledger.FreeBalance("bob-stash"))
	assert.Equal(t, types.Balance(0), f.ledger.ReservedBalance("bob-stash"))
	b, _ := f.module.Bounty(id)
	assert.Equal(t, types.Balance(50), b.SlashedStakes)
	f.requireEscrowBalanced(t, id)

	require.NoError(t, f.module.AnnounceWorkEntry(signed(alice), alice, id, account("alice")))
	f.events.Drain()
	f.clock.Block = 834
	require.NoError(t, f.module.WithdrawWorkEntry(signed(alice), alice, id, 2))
	assert.Equal(t, types.Balance(67), f.lastEvent(t).(WorkEntryWithdrawn).Refund)
	f.requireEscrowBalanced(t, id)

	require.NoError(t, f.module.AnnounceWorkEntry(signed(alice), alice, id, account("alice")))
	f.events.Drain()
	require.NoError(t, f.module.WithdrawWorkEntry(signed(alice), alice, id, 3))
	assert.Equal(t, types.Balance(100), f.lastEvent(t).(WorkEntryWithdrawn).Refund, "no slash at zero elapsed blocks")
	f.requireEscrowBalanced(t, id)
}

func TestWithdrawWorkEntryFailures(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(carol), stakedParams())
	require.NoError(t, f.module.AnnounceWorkEntry(signed(bob), bob, id, account("bob-stash")))
	f.events.Drain()

	assert.ErrorIs(t, f.module.WithdrawWorkEntry(types.Root(), bob, id, 1), auth.ErrBadOrigin)
	assert.ErrorIs(t, f.module.WithdrawWorkEntry(signed(bob), bob, 9, 1), ErrBountyDoesntExist)
	assert.ErrorIs(t, f.module.WithdrawWorkEntry(signed(bob), bob, id, 9), ErrWorkEntryDoesntExist)
	assert.ErrorIs(t, f.module.WithdrawWorkEntry(signed(alice), alice, id, 1), ErrWorkEntryDoesntBelongToMember)

	f.clock.Block = 1002
	assert.ErrorIs(t, f.module.WithdrawWorkEntry(signed(bob), bob, id, 1), ErrInvalidBountyStage, "entries are locked while judging")
	assert.Empty(t, f.events.Events())
	assert.Equal(t, types.Balance(100), f.ledger.ReservedBalance("bob-stash"))
}

func TestWithdrawalWindowReturnsStakesAndSlashes(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, signed(carol), stakedParams())
	require.NoError(t, f.module.AnnounceWorkEntry(signed(bob), bob, id, account("bob-stash")))
	require.NoError(t, f.module.AnnounceWorkEntry(signed(alice), alice, id, account("alice")))
	f.clock.Block = 501
	require.NoError(t, f.module.WithdrawWorkEntry(signed(alice), alice, id, 2))
	f.events.Drain()

	f.clock.Block = 1012
	stage, _ := f.module.Stage(id)
	require.Equal(t, StageWithdrawalWindow, stage)

	require.NoError(t, f.module.WithdrawCreatorFunding(signed(carol), types.Member(carol), id))
	assert.Equal(t, BountyCreatorFundingWithdrawal{BountyID: id, Creator: types.ActorJSON{Actor: types.Member(carol)}, Amount: 160}, f.lastEvent(t))
	assert.Equal(t, types.Balance(1050), f.ledger.FreeBalance("carol"))
	f.requireEscrowBalanced(t, id)

	require.NoError(t, f.module.WithdrawWorkEntry(signed(bob), bob, id, 1))
	assert.Equal(t, BountyRemoved{BountyID: id}, f.lastEvent(t), "the last entry out removes the drained bounty")
	assert.Equal(t, types.Balance(1000), f.ledger.FreeBalance("bob-stash"))
	f.requireEscrowBalanced(t, id)
}

func TestSlashedStake(t *testing.T) {
	tests := []struct {
		elapsed types.BlockNumber
		want    types.Balance
	}{
		{0, 0},
		{333, 33},
		{500, 50},
		{999, 99},
		{1000, 100},
		{5000, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SlashedStake(100, tt.elapsed, 1000), "elapsed %d", tt.elapsed)
	}
}
