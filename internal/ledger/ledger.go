// Package ledger is the in-process currency ledger the engines move funds
// through. Accounts hold a free and a reserved balance. Transfers honor an
// existence policy against the existential deposit; module accounts (escrows)
// are exempt from reaping so their balances stay exact.
package ledger

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/treasury/internal/auth"
	"github.com/roach88/treasury/internal/state"
	"github.com/roach88/treasury/internal/types"
)

const module = "ledger"

var (
	ErrInsufficientBalance  = types.NewDispatchError(module, "InsufficientBalance", "insufficient free balance")
	ErrInsufficientReserved = types.NewDispatchError(module, "InsufficientReserved", "insufficient reserved balance")
	ErrKeepAlive            = types.NewDispatchError(module, "KeepAlive", "transfer would reap the sender")
	ErrExistentialDeposit   = types.NewDispatchError(module, "ExistentialDeposit", "amount below existential deposit for new account")
	ErrOverflow             = types.NewDispatchError(module, "Overflow", "balance overflow")
	ErrZeroAmount           = types.NewDispatchError(module, "ZeroAmount", "amount must be positive")
)

// ExistenceRequirement decides whether an operation may reap its source account.
type ExistenceRequirement int

const (
	// KeepAlive fails an operation that would drop the source below the existential deposit.
	KeepAlive ExistenceRequirement = iota
	// AllowDeath lets the source be reaped.
	AllowDeath
)

// Account is the balance record of one account.
type Account struct {
	Free     types.Balance `json:"free"`
	Reserved types.Balance `json:"reserved"`
}

func (a Account) total() types.Balance {
	return a.Free.SaturatingAdd(a.Reserved)
}

// Ledger holds every account balance and the total issuance.
type Ledger struct {
	existentialDeposit types.Balance
	accounts           *state.Map[types.AccountID, Account]
	issuance           *state.Value[types.Balance]
	events             types.EventSink
	logger             *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithExistentialDeposit sets the minimum balance a user account must keep to exist.
func WithExistentialDeposit(ed types.Balance) Option {
	return func(l *Ledger) { l.existentialDeposit = ed }
}

// WithEvents sets the sink for events of ledger calls.
func WithEvents(sink types.EventSink) Option {
	return func(l *Ledger) { l.events = sink }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		accounts: state.NewMap[types.AccountID, Account](),
		issuance: state.NewValue[types.Balance](0),
		events:   &types.EventBuffer{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ExistentialDeposit returns the configured existential deposit.
func (l *Ledger) ExistentialDeposit() types.Balance { return l.existentialDeposit }

// FreeBalance returns the spendable balance of account.
func (l *Ledger) FreeBalance(account types.AccountID) types.Balance {
	a, _ := l.accounts.Get(account)
	return a.Free
}

// ReservedBalance returns the reserved balance of account.
func (l *Ledger) ReservedBalance(account types.AccountID) types.Balance {
	a, _ := l.accounts.Get(account)
	return a.Reserved
}

// TotalIssuance returns the sum of all balances.
func (l *Ledger) TotalIssuance() types.Balance { return l.issuance.Get() }

// Accounts iterates accounts in id order.
func (l *Ledger) Accounts() *state.Map[types.AccountID, Account] { return l.accounts }

// CanWithdraw reports, without mutating, whether amount can leave the free
// balance of account under req.
func (l *Ledger) CanWithdraw(account types.AccountID, amount types.Balance, req ExistenceRequirement) error {
	a, _ := l.accounts.Get(account)
	if a.Free < amount {
		return fmt.Errorf("%w: account %s has %d, needs %d", ErrInsufficientBalance, account, a.Free, amount)
	}
	if req == KeepAlive && !isModuleAccount(account) {
		left := (a.Free - amount).SaturatingAdd(a.Reserved)
		if left < l.existentialDeposit {
			return fmt.Errorf("%w: account %s would keep %d", ErrKeepAlive, account, left)
		}
	}
	return nil
}

// CanDeposit reports, without mutating, whether account can receive amount.
func (l *Ledger) CanDeposit(account types.AccountID, amount types.Balance) error {
	a, exists := l.accounts.Get(account)
	if a.Free+amount < a.Free {
		return fmt.Errorf("%w: account %s", ErrOverflow, account)
	}
	if !exists && !isModuleAccount(account) && amount < l.existentialDeposit {
		return fmt.Errorf("%w: %d < %d", ErrExistentialDeposit, amount, l.existentialDeposit)
	}
	return nil
}

// Transfer moves amount of free balance between accounts.
func (l *Ledger) Transfer(from, to types.AccountID, amount types.Balance, req ExistenceRequirement) error {
	if amount == 0 || from == to {
		return nil
	}
	if err := l.CanWithdraw(from, amount, req); err != nil {
		return err
	}
	if err := l.CanDeposit(to, amount); err != nil {
		return err
	}
	l.setFree(from, l.FreeBalance(from)-amount)
	l.setFree(to, l.FreeBalance(to)+amount)
	l.logger.Debug("transfer", "from", from, "to", to, "amount", amount)
	return nil
}

// Deposit mints amount into the free balance of account.
func (l *Ledger) Deposit(account types.AccountID, amount types.Balance) error {
	if amount == 0 {
		return nil
	}
	if err := l.CanDeposit(account, amount); err != nil {
		return err
	}
	if l.issuance.Get()+amount < l.issuance.Get() {
		return fmt.Errorf("%w: total issuance", ErrOverflow)
	}
	l.setFree(account, l.FreeBalance(account)+amount)
	l.issuance.Set(l.issuance.Get() + amount)
	return nil
}

// Withdraw burns amount from the free balance of account.
func (l *Ledger) Withdraw(account types.AccountID, amount types.Balance, req ExistenceRequirement) error {
	if amount == 0 {
		return nil
	}
	if err := l.CanWithdraw(account, amount, req); err != nil {
		return err
	}
	l.setFree(account, l.FreeBalance(account)-amount)
	l.issuance.Set(l.issuance.Get() - amount)
	return nil
}

// CanReserve reports, without mutating, whether amount can be reserved.
func (l *Ledger) CanReserve(account types.AccountID, amount types.Balance) error {
	a, _ := l.accounts.Get(account)
	if a.Free < amount {
		return fmt.Errorf("%w: account %s has %d, needs %d", ErrInsufficientBalance, account, a.Free, amount)
	}
	return nil
}

// Reserve moves amount from free to reserved.
func (l *Ledger) Reserve(account types.AccountID, amount types.Balance) error {
	if amount == 0 {
		return nil
	}
	if err := l.CanReserve(account, amount); err != nil {
		return err
	}
	l.accounts.Mutate(account, func(a *Account) {
		a.Free -= amount
		a.Reserved += amount
	})
	return nil
}

// Unreserve moves up to amount from reserved back to free and returns the
// part that could not be unreserved.
func (l *Ledger) Unreserve(account types.AccountID, amount types.Balance) types.Balance {
	a, ok := l.accounts.Get(account)
	if !ok || amount == 0 {
		return amount
	}
	actual := types.Min(amount, a.Reserved)
	a.Reserved -= actual
	a.Free += actual
	l.accounts.Insert(account, a)
	return amount - actual
}

// RepatriateReserved moves amount of from's reserved balance into the free
// balance of to.
func (l *Ledger) RepatriateReserved(from, to types.AccountID, amount types.Balance) error {
	if amount == 0 {
		return nil
	}
	if l.ReservedBalance(from) < amount {
		return fmt.Errorf("%w: account %s reserved %d, needs %d", ErrInsufficientReserved, from, l.ReservedBalance(from), amount)
	}
	if from != to {
		if err := l.CanDeposit(to, amount); err != nil {
			return err
		}
	}
	l.accounts.Mutate(from, func(a *Account) { a.Reserved -= amount })
	l.setFree(to, l.FreeBalance(to)+amount)
	l.reap(from)
	return nil
}

// Slash burns up to amount, taking free balance first and then reserved.
// It returns the part that could not be slashed.
func (l *Ledger) Slash(account types.AccountID, amount types.Balance) types.Balance {
	a, ok := l.accounts.Get(account)
	if !ok {
		return amount
	}
	fromFree := types.Min(amount, a.Free)
	fromReserved := types.Min(amount-fromFree, a.Reserved)
	a.Free -= fromFree
	a.Reserved -= fromReserved
	l.accounts.Insert(account, a)
	l.issuance.Set(l.issuance.Get() - fromFree - fromReserved)
	l.reap(account)
	return amount - fromFree - fromReserved
}

func (l *Ledger) setFree(account types.AccountID, free types.Balance) {
	a, _ := l.accounts.Get(account)
	a.Free = free
	l.accounts.Insert(account, a)
	l.reap(account)
}

// reap drops an account whose total falls below the existential deposit and
// burns the dust.
func (l *Ledger) reap(account types.AccountID) {
	a, ok := l.accounts.Get(account)
	if !ok {
		return
	}
	total := a.total()
	if total == 0 || (!isModuleAccount(account) && total < l.existentialDeposit) {
		l.accounts.Remove(account)
		l.issuance.Set(l.issuance.Get() - total)
		if total > 0 {
			l.logger.Debug("account reaped", "account", account, "dust", total)
		}
	}
}

func isModuleAccount(account types.AccountID) bool {
	return strings.HasPrefix(string(account), "modl/")
}

// TransferCall is the signed transfer call exposed to callers. It keeps the
// sender alive and emits Transfer.
func (l *Ledger) TransferCall(origin types.Origin, to types.AccountID, amount types.Balance) error {
	from, err := auth.EnsureSigned(origin)
	if err != nil {
		return err
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if err := l.Transfer(from, to, amount, KeepAlive); err != nil {
		return err
	}
	l.events.Deposit(Transfer{From: from, To: to, Amount: amount})
	return nil
}

// Transfer is emitted by a successful TransferCall.
type Transfer struct {
	From   types.AccountID `json:"from"`
	To     types.AccountID `json:"to"`
	Amount types.Balance   `json:"amount"`
}

func (Transfer) Module() string { return module }
func (Transfer) Name() string   { return "Transfer" }
