package runtime

import (
	"fmt"

	"github.com/roach88/treasury/internal/bounty"
	"github.com/roach88/treasury/internal/budget"
	"github.com/roach88/treasury/internal/membership"
	"github.com/roach88/treasury/internal/types"
)

// Params are the chain parameters fixed at genesis.
type Params struct {
	MinCherry             types.Balance `json:"min_cherry"`
	MinFunding            types.Balance `json:"min_funding"`
	MaxWorkEntries        int           `json:"max_work_entries"`
	MaxRefillingBudgets   int           `json:"max_refilling_budgets"`
	MaxAutoPaymentBudgets int           `json:"max_auto_payment_budgets"`
	MaxRewardRecipients   int           `json:"max_reward_recipients"`
	MaxCallsPerBlock      int           `json:"max_calls_per_block"`
	ExistentialDeposit    types.Balance `json:"existential_deposit"`
}

// DefaultParams returns the production parameters.
func DefaultParams() Params {
	b := bounty.DefaultConfig()
	g := budget.DefaultConfig()
	return Params{
		MinCherry:             b.MinCherry,
		MinFunding:            b.MinFunding,
		MaxWorkEntries:        b.MaxWorkEntries,
		MaxRefillingBudgets:   g.MaxRefillingBudgets,
		MaxAutoPaymentBudgets: g.MaxAutoPaymentBudgets,
		MaxRewardRecipients:   g.MaxRewardRecipients,
		MaxCallsPerBlock:      100,
		ExistentialDeposit:    1,
	}
}

func (p Params) bountyConfig() bounty.Config {
	return bounty.Config{
		MinCherry:      p.MinCherry,
		MinFunding:     p.MinFunding,
		MaxWorkEntries: p.MaxWorkEntries,
	}
}

func (p Params) budgetConfig() budget.Config {
	return budget.Config{
		MaxRefillingBudgets:   p.MaxRefillingBudgets,
		MaxAutoPaymentBudgets: p.MaxAutoPaymentBudgets,
		MaxRewardRecipients:   p.MaxRewardRecipients,
	}
}

// Genesis is the initial state of a chain.
type Genesis struct {
	// StartBlock is the first block calls are applied in.
	StartBlock types.BlockNumber `json:"start_block"`
	Params     Params            `json:"params"`
	Accounts   []GenesisAccount  `json:"accounts"`
	Members    []GenesisMember   `json:"members"`
	Budgets    []GenesisBudget   `json:"budgets"`
}

// GenesisAccount is an endowed account.
type GenesisAccount struct {
	ID      types.AccountID `json:"id"`
	Balance types.Balance   `json:"balance"`
}

// GenesisMember is a registered member.
type GenesisMember struct {
	ID              types.MemberID    `json:"id"`
	Controller      types.AccountID   `json:"controller"`
	Handle          string            `json:"handle,omitempty"`
	StakingAccounts []types.AccountID `json:"staking_accounts,omitempty"`
}

// GenesisBudget is a budget with its schedule and recipients.
type GenesisBudget struct {
	Type              budget.BudgetType  `json:"type"`
	Balance           types.Balance      `json:"balance"`
	Refill            *GenesisRefill     `json:"refill,omitempty"`
	AutoPaymentPeriod types.BlockNumber  `json:"auto_payment_period,omitempty"`
	Recipients        []GenesisRecipient `json:"recipients,omitempty"`
}

// GenesisRefill is a periodic refill.
type GenesisRefill struct {
	Period types.BlockNumber `json:"period"`
	Amount types.Balance     `json:"amount"`
}

// GenesisRecipient is a reward recipient. A recipient with an account is a
// pull recipient.
type GenesisRecipient struct {
	UserID         types.MemberID   `json:"user_id"`
	RewardPerBlock types.Balance    `json:"reward_per_block"`
	Account        *types.AccountID `json:"account,omitempty"`
}

// apply builds the genesis state into r. It runs at StartBlock, so refills
// and auto payments are first due StartBlock + period.
func (g Genesis) apply(r *Runtime) error {
	for _, a := range g.Accounts {
		if err := r.ledger.Deposit(a.ID, a.Balance); err != nil {
			return fmt.Errorf("endow account %s: %w", a.ID, err)
		}
	}
	for _, m := range g.Members {
		err := r.members.Register(membership.Member{
			ID:              m.ID,
			Controller:      m.Controller,
			Handle:          m.Handle,
			StakingAccounts: m.StakingAccounts,
		})
		if err != nil {
			return fmt.Errorf("register member %s: %w", m.ID, err)
		}
	}

	r.budgets.Controller(budget.CouncilBudget).RefillBudget(0)
	for _, b := range g.Budgets {
		c := r.budgets.Controller(b.Type)
		c.SetBudget(b.Balance)
		if b.Refill != nil && !c.SetPeriodicRefill(b.Refill.Period, b.Refill.Amount) {
			return fmt.Errorf("budget %s: %w", b.Type, budget.ErrRefillLimitReached)
		}
		if b.AutoPaymentPeriod > 0 && !c.SetAutoPayment(b.AutoPaymentPeriod) {
			return fmt.Errorf("budget %s: %w", b.Type, budget.ErrAutoPaymentLimitReached)
		}
		for _, rc := range b.Recipients {
			var added bool
			if rc.Account != nil {
				added = c.AddPullRecipient(rc.UserID, rc.RewardPerBlock, *rc.Account)
			} else {
				added = c.AddRecipient(rc.UserID, rc.RewardPerBlock)
			}
			if !added {
				return fmt.Errorf("budget %s recipient %s: %w", b.Type, rc.UserID, budget.ErrRecipientLimitReached)
			}
		}
	}
	return nil
}
