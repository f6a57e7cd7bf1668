package budget

import "github.com/roach88/treasury/internal/types"

// BudgetType names a budget.
type BudgetType string

// CouncilBudget is the budget the council spends from, including bounty funding.
const CouncilBudget BudgetType = "council"

// Budget is a spendable pool with optional periodic refill and auto payment.
type Budget struct {
	Balance     types.Balance `json:"balance"`
	Refill      *Refill       `json:"refill,omitempty"`
	AutoPayment *AutoPayment  `json:"auto_payment,omitempty"`
}

// Refill adds Amount to the budget every Period blocks.
type Refill struct {
	Period     types.BlockNumber `json:"period"`
	Amount     types.Balance     `json:"amount"`
	NextRefill types.BlockNumber `json:"next_refill"`
}

// AutoPayment pays accrued rewards to recipients every Period blocks.
type AutoPayment struct {
	Period          types.BlockNumber `json:"period"`
	NextAutoPayment types.BlockNumber `json:"next_auto_payment"`
}

// RewardRecipient is the reward checkpoint of one user of a budget.
type RewardRecipient struct {
	UserID             types.MemberID    `json:"user_id"`
	LastPaymentBlock   types.BlockNumber `json:"last_payment_block"`
	RewardPerBlock     types.Balance     `json:"reward_per_block"`
	UnpaidReward       types.Balance     `json:"unpaid_reward"`
	PullRewardEnabled  bool              `json:"pull_reward_enabled"`
	AutoPaymentAccount *types.AccountID  `json:"auto_payment_account,omitempty"`
}

// CurrentReward returns the reward accrued up to now.
func (r RewardRecipient) CurrentReward(now types.BlockNumber) types.Balance {
	elapsed := uint64(now.Since(r.LastPaymentBlock))
	return r.UnpaidReward.SaturatingAdd(r.RewardPerBlock.SaturatingMul(elapsed))
}

// checkpoint folds the accrued reward into UnpaidReward at now.
func (r *RewardRecipient) checkpoint(now types.BlockNumber) {
	r.UnpaidReward = r.CurrentReward(now)
	r.LastPaymentBlock = now
}

// Config bounds the engine's storage.
type Config struct {
	// MaxRefillingBudgets caps the number of budgets with a periodic refill.
	MaxRefillingBudgets int
	// MaxAutoPaymentBudgets caps the number of budgets with auto payment.
	MaxAutoPaymentBudgets int
	// MaxRewardRecipients caps the recipients of one budget.
	MaxRewardRecipients int
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{
		MaxRefillingBudgets:   20,
		MaxAutoPaymentBudgets: 20,
		MaxRewardRecipients:   100,
	}
}
