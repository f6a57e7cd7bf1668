package budget

import (
	"slices"

	"github.com/roach88/treasury/internal/types"
)

// Controller manages one budget and its recipients.
type Controller struct {
	m          *Module
	budgetType BudgetType
}

// Type returns the controlled budget type.
func (c Controller) Type() BudgetType { return c.budgetType }

// GetBalance returns the budget balance, zero for an absent budget.
func (c Controller) GetBalance() types.Balance {
	b, _ := c.m.budgets.Get(c.budgetType)
	return b.Balance
}

// SpendFromBudget deducts amount. It returns false, changing nothing, when the
// amount is zero, the budget is absent or the balance is short.
func (c Controller) SpendFromBudget(amount types.Balance) bool {
	if amount == 0 {
		return false
	}
	b, ok := c.m.budgets.Get(c.budgetType)
	if !ok || b.Balance < amount {
		return false
	}
	b.Balance -= amount
	c.m.budgets.Insert(c.budgetType, b)
	return true
}

// RefillBudget adds amount, creating the budget when absent.
func (c Controller) RefillBudget(amount types.Balance) {
	b, _ := c.m.budgets.Get(c.budgetType)
	b.Balance = b.Balance.SaturatingAdd(amount)
	c.m.budgets.Insert(c.budgetType, b)
}

// SetBudget overwrites the balance, creating the budget when absent.
func (c Controller) SetBudget(amount types.Balance) {
	b, _ := c.m.budgets.Get(c.budgetType)
	b.Balance = amount
	c.m.budgets.Insert(c.budgetType, b)
}

// AddRecipient registers user with a reward rate. Re-registering checkpoints
// the accrued reward at the old rate before switching. A new registration
// beyond MaxRewardRecipients is refused with false.
func (c Controller) AddRecipient(user types.MemberID, rewardPerBlock types.Balance) bool {
	now := c.m.now()
	r, ok := c.m.recipients.Get(c.budgetType, user)
	if !ok {
		if c.m.recipients.CountPrefix(c.budgetType) >= c.m.cfg.MaxRewardRecipients {
			return false
		}
		c.m.recipients.Insert(c.budgetType, user, RewardRecipient{
			UserID:           user,
			LastPaymentBlock: now,
			RewardPerBlock:   rewardPerBlock,
		})
		return true
	}
	r.checkpoint(now)
	r.RewardPerBlock = rewardPerBlock
	c.m.recipients.Insert(c.budgetType, user, r)
	return true
}

// AddPullRecipient registers user like AddRecipient and enables reward
// withdrawal and auto payment to account.
func (c Controller) AddPullRecipient(user types.MemberID, rewardPerBlock types.Balance, account types.AccountID) bool {
	if !c.AddRecipient(user, rewardPerBlock) {
		return false
	}
	c.m.recipients.Mutate(c.budgetType, user, func(r *RewardRecipient) {
		r.PullRewardEnabled = true
		r.AutoPaymentAccount = &account
	})
	return true
}

// Recipient returns the stored checkpoint of user.
func (c Controller) Recipient(user types.MemberID) (RewardRecipient, bool) {
	return c.m.recipients.Get(c.budgetType, user)
}

// CurrentReward returns the reward user has accrued by now.
func (c Controller) CurrentReward(user types.MemberID) types.Balance {
	r, ok := c.m.recipients.Get(c.budgetType, user)
	if !ok {
		return 0
	}
	return r.CurrentReward(c.m.now())
}

// RemoveRecipient stops future accrual for user. The unpaid reward stays
// withdrawable.
func (c Controller) RemoveRecipient(user types.MemberID) {
	now := c.m.now()
	c.m.recipients.Mutate(c.budgetType, user, func(r *RewardRecipient) {
		r.checkpoint(now)
		r.RewardPerBlock = 0
	})
}

// RemoveRecipientClearReward deletes user, forfeiting any unpaid reward.
func (c Controller) RemoveRecipientClearReward(user types.MemberID) {
	c.m.recipients.Remove(c.budgetType, user)
}

// SetPeriodicRefill schedules amount to be added every period blocks,
// starting period blocks from now. A zero amount removes the refill. It
// returns false for an absent budget or when MaxRefillingBudgets budgets
// already refill.
func (c Controller) SetPeriodicRefill(period types.BlockNumber, amount types.Balance) bool {
	b, ok := c.m.budgets.Get(c.budgetType)
	if !ok {
		return false
	}
	if amount == 0 {
		if b.Refill != nil {
			b.Refill = nil
			c.m.budgets.Insert(c.budgetType, b)
			c.m.activeRefills.Set(without(c.m.activeRefills.Get(), c.budgetType))
		}
		return true
	}
	if b.Refill == nil {
		if len(c.m.activeRefills.Get()) >= c.m.cfg.MaxRefillingBudgets {
			return false
		}
		c.m.activeRefills.Set(append(slices.Clone(c.m.activeRefills.Get()), c.budgetType))
	}
	b.Refill = &Refill{
		Period:     period,
		Amount:     amount,
		NextRefill: c.m.now().SaturatingAdd(period),
	}
	c.m.budgets.Insert(c.budgetType, b)
	return true
}

// SetAutoPayment schedules reward payouts every period blocks, starting
// period blocks from now. A zero period removes auto payment. It returns
// false for an absent budget or when MaxAutoPaymentBudgets budgets already
// auto pay.
func (c Controller) SetAutoPayment(period types.BlockNumber) bool {
	b, ok := c.m.budgets.Get(c.budgetType)
	if !ok {
		return false
	}
	if period == 0 {
		if b.AutoPayment != nil {
			b.AutoPayment = nil
			c.m.budgets.Insert(c.budgetType, b)
			c.m.activeAutoPayments.Set(without(c.m.activeAutoPayments.Get(), c.budgetType))
		}
		return true
	}
	if b.AutoPayment == nil {
		if len(c.m.activeAutoPayments.Get()) >= c.m.cfg.MaxAutoPaymentBudgets {
			return false
		}
		c.m.activeAutoPayments.Set(append(slices.Clone(c.m.activeAutoPayments.Get()), c.budgetType))
	}
	b.AutoPayment = &AutoPayment{
		Period:          period,
		NextAutoPayment: c.m.now().SaturatingAdd(period),
	}
	c.m.budgets.Insert(c.budgetType, b)
	return true
}

func without(list []BudgetType, t BudgetType) []BudgetType {
	return slices.DeleteFunc(slices.Clone(list), func(x BudgetType) bool { return x == t })
}
