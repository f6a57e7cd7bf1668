package budget

import "github.com/roach88/treasury/internal/types"

type RewardWithdrawal struct {
	BudgetType BudgetType      `json:"budget_type"`
	UserID     types.MemberID  `json:"user_id"`
	Account    types.AccountID `json:"account"`
	Amount     types.Balance   `json:"amount"`
}

// RewardPartialWithdrawal is emitted when the budget could cover only part of
// the reward; Unpaid stays withdrawable.
type RewardPartialWithdrawal struct {
	BudgetType BudgetType      `json:"budget_type"`
	UserID     types.MemberID  `json:"user_id"`
	Account    types.AccountID `json:"account"`
	Amount     types.Balance   `json:"amount"`
	Unpaid     types.Balance   `json:"unpaid"`
}

type BudgetBalanceSet struct {
	BudgetType BudgetType    `json:"budget_type"`
	Balance    types.Balance `json:"balance"`
}

type BudgetRefilled struct {
	BudgetType BudgetType    `json:"budget_type"`
	Amount     types.Balance `json:"amount"`
}

type RewardRecipientAdded struct {
	BudgetType     BudgetType       `json:"budget_type"`
	UserID         types.MemberID   `json:"user_id"`
	RewardPerBlock types.Balance    `json:"reward_per_block"`
	Account        *types.AccountID `json:"account,omitempty"`
}

type RewardRecipientRemoved struct {
	BudgetType    BudgetType     `json:"budget_type"`
	UserID        types.MemberID `json:"user_id"`
	RewardCleared bool           `json:"reward_cleared"`
}

type BudgetRefillScheduled struct {
	BudgetType BudgetType        `json:"budget_type"`
	Period     types.BlockNumber `json:"period"`
	Amount     types.Balance     `json:"amount"`
}

type BudgetAutoPaymentScheduled struct {
	BudgetType BudgetType        `json:"budget_type"`
	Period     types.BlockNumber `json:"period"`
}

func (RewardWithdrawal) Module() string           { return module }
func (RewardPartialWithdrawal) Module() string    { return module }
func (BudgetBalanceSet) Module() string           { return module }
func (BudgetRefilled) Module() string             { return module }
func (RewardRecipientAdded) Module() string       { return module }
func (RewardRecipientRemoved) Module() string     { return module }
func (BudgetRefillScheduled) Module() string      { return module }
func (BudgetAutoPaymentScheduled) Module() string { return module }

func (RewardWithdrawal) Name() string           { return "RewardWithdrawal" }
func (RewardPartialWithdrawal) Name() string    { return "RewardPartialWithdrawal" }
func (BudgetBalanceSet) Name() string           { return "BudgetBalanceSet" }
func (BudgetRefilled) Name() string             { return "BudgetRefilled" }
func (RewardRecipientAdded) Name() string       { return "RewardRecipientAdded" }
func (RewardRecipientRemoved) Name() string     { return "RewardRecipientRemoved" }
func (BudgetRefillScheduled) Name() string      { return "BudgetRefillScheduled" }
func (BudgetAutoPaymentScheduled) Name() string { return "BudgetAutoPaymentScheduled" }
