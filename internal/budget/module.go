package budget

import (
	"log/slog"
	"slices"

	"github.com/roach88/treasury/internal/auth"
	"github.com/roach88/treasury/internal/state"
	"github.com/roach88/treasury/internal/types"
)

// Currency is the ledger surface rewards are paid through. Budgets are
// bookkeeping balances, so a payout mints into the recipient account.
type Currency interface {
	CanDeposit(account types.AccountID, amount types.Balance) error
	Deposit(account types.AccountID, amount types.Balance) error
}

// Module owns every budget and reward recipient.
type Module struct {
	cfg     Config
	clock   types.BlockSource
	ledger  Currency
	members auth.MembershipResolver
	events  types.EventSink
	logger  *slog.Logger

	budgets            *state.Map[BudgetType, Budget]
	recipients         *state.DoubleMap[BudgetType, types.MemberID, RewardRecipient]
	activeRefills      *state.Value[[]BudgetType]
	activeAutoPayments *state.Value[[]BudgetType]
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

// New returns an engine with no budgets.
func New(cfg Config, clock types.BlockSource, ledger Currency, members auth.MembershipResolver, opts ...Option) *Module {
	m := &Module{
		cfg:                cfg,
		clock:              clock,
		ledger:             ledger,
		members:            members,
		events:             &types.EventBuffer{},
		logger:             slog.Default(),
		budgets:            state.NewMap[BudgetType, Budget](),
		recipients:         state.NewDoubleMap[BudgetType, types.MemberID, RewardRecipient](),
		activeRefills:      state.NewValue[[]BudgetType](nil),
		activeAutoPayments: state.NewValue[[]BudgetType](nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Controller returns the controller of budget t. Controllers are cheap views.
func (m *Module) Controller(t BudgetType) Controller {
	return Controller{m: m, budgetType: t}
}

// Budget returns the stored budget t.
func (m *Module) Budget(t BudgetType) (Budget, bool) {
	return m.budgets.Get(t)
}

// Budgets returns the budget types in key order.
func (m *Module) Budgets() []BudgetType {
	return m.budgets.Keys()
}

// Recipients returns the recipients of budget t in user id order.
func (m *Module) Recipients(t BudgetType) []RewardRecipient {
	var out []RewardRecipient
	for _, r := range m.recipients.Prefix(t) {
		out = append(out, r)
	}
	return out
}

// ActiveRefills returns the budgets with a periodic refill in registration order.
func (m *Module) ActiveRefills() []BudgetType {
	return slices.Clone(m.activeRefills.Get())
}

// ActiveAutoPayments returns the budgets with auto payment in registration order.
func (m *Module) ActiveAutoPayments() []BudgetType {
	return slices.Clone(m.activeAutoPayments.Get())
}

// Snapshot is the canonical view of the engine's storage used for state roots.
type Snapshot struct {
	Budgets            *state.Map[BudgetType, Budget]                               `json:"budgets"`
	Recipients         *state.DoubleMap[BudgetType, types.MemberID, RewardRecipient] `json:"recipients"`
	ActiveRefills      []BudgetType                                                 `json:"active_refills"`
	ActiveAutoPayments []BudgetType                                                 `json:"active_auto_payments"`
}

// Snapshot returns a read-only view of storage.
func (m *Module) Snapshot() Snapshot {
	return Snapshot{
		Budgets:            m.budgets,
		Recipients:         m.recipients,
		ActiveRefills:      m.ActiveRefills(),
		ActiveAutoPayments: m.ActiveAutoPayments(),
	}
}

func (m *Module) now() types.BlockNumber {
	return m.clock.CurrentBlock()
}
