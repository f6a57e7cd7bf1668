package budget

import (
	"fmt"

	"github.com/roach88/treasury/internal/auth"
	"github.com/roach88/treasury/internal/types"
)

// The calls below expose the BudgetController to the root origin, so budgets
// can be administered from outside the runtime.

// SetBudgetCall overwrites the balance of budget t.
func (m *Module) SetBudgetCall(origin types.Origin, t BudgetType, balance types.Balance) error {
	if err := auth.EnsureRoot(origin); err != nil {
		return err
	}
	m.Controller(t).SetBudget(balance)
	m.events.Deposit(BudgetBalanceSet{BudgetType: t, Balance: balance})
	return nil
}

// RefillBudgetCall adds amount to budget t.
func (m *Module) RefillBudgetCall(origin types.Origin, t BudgetType, amount types.Balance) error {
	if err := auth.EnsureRoot(origin); err != nil {
		return err
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	m.Controller(t).RefillBudget(amount)
	m.events.Deposit(BudgetRefilled{BudgetType: t, Amount: amount})
	return nil
}

// AddRecipientCall registers a recipient. A non-nil account makes it a pull recipient.
func (m *Module) AddRecipientCall(origin types.Origin, t BudgetType, user types.MemberID, rewardPerBlock types.Balance, account *types.AccountID) error {
	if err := auth.EnsureRoot(origin); err != nil {
		return err
	}
	c := m.Controller(t)
	var added bool
	if account != nil {
		added = c.AddPullRecipient(user, rewardPerBlock, *account)
	} else {
		added = c.AddRecipient(user, rewardPerBlock)
	}
	if !added {
		return fmt.Errorf("%w: budget %s", ErrRecipientLimitReached, t)
	}
	m.events.Deposit(RewardRecipientAdded{BudgetType: t, UserID: user, RewardPerBlock: rewardPerBlock, Account: account})
	return nil
}

// RemoveRecipientCall removes a recipient, clearing its unpaid reward when clear is set.
func (m *Module) RemoveRecipientCall(origin types.Origin, t BudgetType, user types.MemberID, clear bool) error {
	if err := auth.EnsureRoot(origin); err != nil {
		return err
	}
	c := m.Controller(t)
	if _, ok := c.Recipient(user); !ok {
		return fmt.Errorf("%w: user %s of budget %s", ErrNotRewardRecipient, user, t)
	}
	if clear {
		c.RemoveRecipientClearReward(user)
	} else {
		c.RemoveRecipient(user)
	}
	m.events.Deposit(RewardRecipientRemoved{BudgetType: t, UserID: user, RewardCleared: clear})
	return nil
}

// SetPeriodicRefillCall schedules or, with a zero amount, removes a refill.
func (m *Module) SetPeriodicRefillCall(origin types.Origin, t BudgetType, period types.BlockNumber, amount types.Balance) error {
	if err := auth.EnsureRoot(origin); err != nil {
		return err
	}
	if amount > 0 && period == 0 {
		return ErrZeroPeriod
	}
	if _, ok := m.budgets.Get(t); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidBudget, t)
	}
	if !m.Controller(t).SetPeriodicRefill(period, amount) {
		return ErrRefillLimitReached
	}
	m.events.Deposit(BudgetRefillScheduled{BudgetType: t, Period: period, Amount: amount})
	return nil
}

// SetAutoPaymentCall schedules or, with a zero period, removes auto payment.
func (m *Module) SetAutoPaymentCall(origin types.Origin, t BudgetType, period types.BlockNumber) error {
	if err := auth.EnsureRoot(origin); err != nil {
		return err
	}
	if _, ok := m.budgets.Get(t); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidBudget, t)
	}
	if !m.Controller(t).SetAutoPayment(period) {
		return ErrAutoPaymentLimitReached
	}
	m.events.Deposit(BudgetAutoPaymentScheduled{BudgetType: t, Period: period})
	return nil
}
