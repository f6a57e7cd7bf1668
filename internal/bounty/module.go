package bounty

import (
	"fmt"
	"log/slog"

	"github.com/roach88/treasury/internal/auth"
	"github.com/roach88/treasury/internal/ledger"
	"github.com/roach88/treasury/internal/state"
	"github.com/roach88/treasury/internal/types"
)

// Currency is the ledger surface the escrow moves funds through.
type Currency interface {
	FreeBalance(account types.AccountID) types.Balance
	ReservedBalance(account types.AccountID) types.Balance
	CanWithdraw(account types.AccountID, amount types.Balance, req ledger.ExistenceRequirement) error
	CanDeposit(account types.AccountID, amount types.Balance) error
	CanReserve(account types.AccountID, amount types.Balance) error
	Transfer(from, to types.AccountID, amount types.Balance, req ledger.ExistenceRequirement) error
	Deposit(account types.AccountID, amount types.Balance) error
	Withdraw(account types.AccountID, amount types.Balance, req ledger.ExistenceRequirement) error
	Reserve(account types.AccountID, amount types.Balance) error
	Unreserve(account types.AccountID, amount types.Balance) types.Balance
	RepatriateReserved(from, to types.AccountID, amount types.Balance) error
}

// Membership resolves member origins and the accounts members may stake from.
type Membership interface {
	auth.MembershipResolver
	IsStakingAccount(member types.MemberID, account types.AccountID) bool
}

// CouncilBudgetManager is the council's spendable pool.
type CouncilBudgetManager interface {
	GetBudget() types.Balance
	SetBudget(amount types.Balance)
}

// Module owns bounties, contributions and work entries.
type Module struct {
	cfg     Config
	clock   types.BlockSource
	ledger  Currency
	members Membership
	council CouncilBudgetManager
	events  types.EventSink
	logger  *slog.Logger

	bounties      *state.Map[BountyID, Bounty]
	contributions *state.DoubleMap[BountyID, string, Contribution]
	entries       *state.DoubleMap[BountyID, EntryID, WorkEntry]
	bountyCount   *state.Value[uint64]
	entryCount    *state.Value[uint64]
}

// Option configures a Module.
type Option func(*Module)

// WithEvents sets the event sink.
func WithEvents(sink types.EventSink) Option {
	return func(m *Module) { m.events = sink }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Module) { m.logger = logger }
}

// New returns an engine with no bounties.
func New(cfg Config, clock types.BlockSource, currency Currency, members Membership, council CouncilBudgetManager, opts ...Option) *Module {
	m := &Module{
		cfg:           cfg,
		clock:         clock,
		ledger:        currency,
		members:       members,
		council:       council,
		events:        &types.EventBuffer{},
		logger:        slog.Default(),
		bounties:      state.NewMap[BountyID, Bounty](),
		contributions: state.NewDoubleMap[BountyID, string, Contribution](),
		entries:       state.NewDoubleMap[BountyID, EntryID, WorkEntry](),
		bountyCount:   state.NewValue[uint64](0),
		entryCount:    state.NewValue[uint64](0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EscrowAccount returns the escrow account of bounty id.
func EscrowAccount(id BountyID) types.AccountID {
	return types.ModuleAccount(module, uint64(id))
}

// Bounty returns the bounty with id.
func (m *Module) Bounty(id BountyID) (Bounty, bool) {
	return m.bounties.Get(id)
}

// Bounties returns the stored bounty ids in order.
func (m *Module) Bounties() []BountyID {
	return m.bounties.Keys()
}

// BountyCount returns the number of bounties ever created.
func (m *Module) BountyCount() uint64 {
	return m.bountyCount.Get()
}

// Contribution returns what funder contributed to bounty id.
func (m *Module) Contribution(id BountyID, funder types.Actor) (Contribution, bool) {
	return m.contributions.Get(id, funder.Key())
}

// Contributions returns the contributions to bounty id in funder key order.
func (m *Module) Contributions(id BountyID) []Contribution {
	var out []Contribution
	for _, c := range m.contributions.Prefix(id) {
		out = append(out, c)
	}
	return out
}

// WorkEntries returns the active work entries of bounty id in entry id order.
func (m *Module) WorkEntries(id BountyID) []WorkEntry {
	var out []WorkEntry
	for _, e := range m.entries.Prefix(id) {
		out = append(out, e)
	}
	return out
}

// Stage returns the current stage of bounty id.
func (m *Module) Stage(id BountyID) (Stage, bool) {
	b, ok := m.bounties.Get(id)
	if !ok {
		return 0, false
	}
	return b.Stage(m.now()), true
}

// Snapshot is the canonical view of the engine's storage used for state roots.
type Snapshot struct {
	Bounties      *state.Map[BountyID, Bounty]                    `json:"bounties"`
	Contributions *state.DoubleMap[BountyID, string, Contribution] `json:"contributions"`
	Entries       *state.DoubleMap[BountyID, EntryID, WorkEntry]  `json:"work_entries"`
	BountyCount   uint64                                          `json:"bounty_count"`
	EntryCount    uint64                                          `json:"work_entry_count"`
}

// Snapshot returns a read-only view of storage.
func (m *Module) Snapshot() Snapshot {
	return Snapshot{
		Bounties:      m.bounties,
		Contributions: m.contributions,
		Entries:       m.entries,
		BountyCount:   m.bountyCount.Get(),
		EntryCount:    m.entryCount.Get(),
	}
}

func (m *Module) now() types.BlockNumber {
	return m.clock.CurrentBlock()
}

func (m *Module) getBounty(id BountyID) (Bounty, error) {
	b, ok := m.bounties.Get(id)
	if !ok {
		return Bounty{}, fmt.Errorf("%w: %d", ErrBountyDoesntExist, id)
	}
	return b, nil
}

// party is a verified actor and, for members, the account funds move through.
type party struct {
	actor   types.Actor
	account types.AccountID
}

// resolveParty authorizes origin to act as actor.
func (m *Module) resolveParty(origin types.Origin, actor types.Actor) (party, error) {
	switch a := actor.(type) {
	case types.CouncilActor:
		if err := auth.EnsureRoot(origin); err != nil {
			return party{}, err
		}
		return party{actor: actor}, nil
	case types.MemberActor:
		account, err := auth.EnsureMember(origin, m.members, a.ID)
		if err != nil {
			return party{}, err
		}
		return party{actor: actor, account: account}, nil
	default:
		return party{}, fmt.Errorf("%w: unknown actor %T", auth.ErrBadOrigin, actor)
	}
}

// ensureCanPay checks that p can move amount into an escrow.
func (m *Module) ensureCanPay(p party, amount types.Balance) error {
	if _, ok := p.actor.(types.CouncilActor); ok {
		if m.council.GetBudget() < amount {
			return fmt.Errorf("%w: council budget %d, needs %d", ErrInsufficientBalanceForBounty, m.council.GetBudget(), amount)
		}
		return nil
	}
	if err := m.ledger.CanWithdraw(p.account, amount, ledger.KeepAlive); err != nil {
		return fmt.Errorf("%w: %w", ErrInsufficientBalanceForBounty, err)
	}
	return nil
}

// pay moves amount from p into escrow. Callers validate with ensureCanPay first.
func (m *Module) pay(p party, escrow types.AccountID, amount types.Balance) error {
	if _, ok := p.actor.(types.CouncilActor); ok {
		m.council.SetBudget(m.council.GetBudget() - amount)
		return m.ledger.Deposit(escrow, amount)
	}
	return m.ledger.Transfer(p.account, escrow, amount, ledger.KeepAlive)
}

// ensureCanRefund checks that escrow can return amount to p.
func (m *Module) ensureCanRefund(p party, escrow types.AccountID, amount types.Balance) error {
	if err := m.ledger.CanWithdraw(escrow, amount, ledger.AllowDeath); err != nil {
		return fmt.Errorf("%w: %w", ErrEscrowInconsistent, err)
	}
	if _, ok := p.actor.(types.CouncilActor); ok {
		return nil
	}
	if err := m.ledger.CanDeposit(p.account, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrEscrowInconsistent, err)
	}
	return nil
}

// refund moves amount from escrow back to p. Council refunds return to the
// council budget.
func (m *Module) refund(p party, escrow types.AccountID, amount types.Balance) error {
	if _, ok := p.actor.(types.CouncilActor); ok {
		if err := m.ledger.Withdraw(escrow, amount, ledger.AllowDeath); err != nil {
			return err
		}
		m.council.SetBudget(m.council.GetBudget().SaturatingAdd(amount))
		return nil
	}
	return m.ledger.Transfer(escrow, p.account, amount, ledger.AllowDeath)
}

// removeIfDrained deletes b once no contribution, no work entry and no escrow
// balance remain. It reports whether b was removed.
func (m *Module) removeIfDrained(b Bounty) bool {
	if m.contributions.CountPrefix(b.ID) > 0 || m.entries.CountPrefix(b.ID) > 0 {
		return false
	}
	if m.ledger.FreeBalance(EscrowAccount(b.ID)) > 0 {
		return false
	}
	m.bounties.Remove(b.ID)
	m.contributions.RemovePrefix(b.ID)
	m.logger.Debug("bounty removed", "bounty", b.ID)
	return true
}
