package budget

import "github.com/roach88/treasury/internal/types"

const module = "budget"

var (
	ErrBudgetUserIDNotMatchAccount = types.NewDispatchError(module, "BudgetUserIdNotMatchAccount", "budget user id does not match the account")
	ErrNotRewardRecipient          = types.NewDispatchError(module, "NotRewardRecipient", "not a reward recipient")
	ErrNotPullRewardRecipient      = types.NewDispatchError(module, "NotPullRewardRecipient", "reward pulling is not enabled for the recipient")
	ErrNoRewardNow                 = types.NewDispatchError(module, "NoRewardNow", "no reward to withdraw")
	ErrInvalidBudget               = types.NewDispatchError(module, "InvalidBudget", "budget does not exist")
	ErrBudgetDepleted              = types.NewDispatchError(module, "BudgetDepleted", "budget balance is zero")
	ErrRecipientLimitReached       = types.NewDispatchError(module, "RecipientLimitReached", "maximum number of reward recipients reached")
	ErrRefillLimitReached          = types.NewDispatchError(module, "RefillLimitReached", "maximum number of refilling budgets reached")
	ErrAutoPaymentLimitReached     = types.NewDispatchError(module, "AutoPaymentLimitReached", "maximum number of auto-paying budgets reached")
	ErrZeroPeriod                  = types.NewDispatchError(module, "ZeroPeriod", "period cannot be zero")
	ErrZeroAmount                  = types.NewDispatchError(module, "ZeroAmount", "amount cannot be zero")
	ErrPayoutRejected              = types.NewDispatchError(module, "PayoutRejected", "ledger rejected the payout")
)
