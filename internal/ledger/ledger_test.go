package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treasury/internal/types"
)

func newFunded(t *testing.T, ed types.Balance, balances map[types.AccountID]types.Balance) *Ledger {
	t.Helper()
	l := New(WithExistentialDeposit(ed))
	for acc, amount := range balances {
		require.NoError(t, l.Deposit(acc, amount))
	}
	return l
}

func TestTransfer(t *testing.T) {
	l := newFunded(t, 0, map[types.AccountID]types.Balance{"alice": 100})

	require.NoError(t, l.Transfer("alice", "bob", 40, KeepAlive))
	assert.Equal(t, types.Balance(60), l.FreeBalance("alice"))
	assert.Equal(t, types.Balance(40), l.FreeBalance("bob"))
	assert.Equal(t, types.Balance(100), l.TotalIssuance())

	err := l.Transfer("alice", "bob", 61, AllowDeath)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, types.Balance(60), l.FreeBalance("alice"))
}

func TestTransferExistencePolicy(t *testing.T) {
	l := newFunded(t, 10, map[types.AccountID]types.Balance{"alice": 100})

	assert.ErrorIs(t, l.Transfer("alice", "bob", 95, KeepAlive), ErrKeepAlive)
	assert.ErrorIs(t, l.Transfer("alice", "bob", 5, KeepAlive), ErrExistentialDeposit)

	require.NoError(t, l.Transfer("alice", "bob", 95, AllowDeath))
	assert.Equal(t, types.Balance(0), l.FreeBalance("alice"))
	assert.False(t, l.Accounts().Contains("alice"), "alice is reaped")
	assert.Equal(t, types.Balance(95), l.TotalIssuance(), "dust is burned")
}

func TestModuleAccountsAreNotReaped(t *testing.T) {
	l := newFunded(t, 10, map[types.AccountID]types.Balance{"alice": 100})
	escrow := types.ModuleAccount("bounty", 1)

	require.NoError(t, l.Transfer("alice", escrow, 3, KeepAlive))
	require.NoError(t, l.Transfer(escrow, "alice", 1, AllowDeath))
	assert.Equal(t, types.Balance(2), l.FreeBalance(escrow))
}

func TestReserveAndRepatriate(t *testing.T) {
	l := newFunded(t, 0, map[types.AccountID]types.Balance{"stake": 100})
	escrow := types.ModuleAccount("bounty", 1)

	assert.ErrorIs(t, l.Reserve("stake", 101), ErrInsufficientBalance)
	require.NoError(t, l.Reserve("stake", 100))
	assert.Equal(t, types.Balance(0), l.FreeBalance("stake"))
	assert.Equal(t, types.Balance(100), l.ReservedBalance("stake"))

	assert.Equal(t, types.Balance(0), l.Unreserve("stake", 67))
	require.NoError(t, l.RepatriateReserved("stake", escrow, 33))
	assert.Equal(t, types.Balance(67), l.FreeBalance("stake"))
	assert.Equal(t, types.Balance(0), l.ReservedBalance("stake"))
	assert.Equal(t, types.Balance(33), l.FreeBalance(escrow))

	assert.ErrorIs(t, l.RepatriateReserved("stake", escrow, 1), ErrInsufficientReserved)
	assert.Equal(t, types.Balance(5), l.Unreserve("stake", 5))
}

func TestDepositWithdrawSlash(t *testing.T) {
	l := New()
	require.NoError(t, l.Deposit("alice", 50))
	require.NoError(t, l.Reserve("alice", 20))

	assert.ErrorIs(t, l.Withdraw("alice", 31, AllowDeath), ErrInsufficientBalance)
	require.NoError(t, l.Withdraw("alice", 10, AllowDeath))
	assert.Equal(t, types.Balance(40), l.TotalIssuance())

	remaining := l.Slash("alice", 35)
	assert.Equal(t, types.Balance(0), remaining)
	assert.Equal(t, types.Balance(0), l.FreeBalance("alice"))
	assert.Equal(t, types.Balance(5), l.ReservedBalance("alice"))
	assert.Equal(t, types.Balance(5), l.TotalIssuance())

	assert.Equal(t, types.Balance(5), l.Slash("nobody", 5))
}

func TestDepositOverflow(t *testing.T) {
	l := New()
	require.NoError(t, l.Deposit("alice", types.MaxBalance))
	assert.ErrorIs(t, l.Deposit("alice", 1), ErrOverflow)
}

func TestTransferCall(t *testing.T) {
	buf := &types.EventBuffer{}
	l := New(WithEvents(buf))
	require.NoError(t, l.Deposit("alice", 10))

	require.NoError(t, l.TransferCall(types.Signed("alice"), "bob", 4))
	assert.Equal(t, []types.Event{Transfer{From: "alice", To: "bob", Amount: 4}}, buf.Drain())

	assert.ErrorIs(t, l.TransferCall(types.Signed("alice"), "bob", 0), ErrZeroAmount)
	assert.Error(t, l.TransferCall(types.Root(), "bob", 1))
	assert.Empty(t, buf.Events())
}
