package budget

import (
	"errors"
	"fmt"

	"github.com/roach88/treasury/internal/auth"
	"github.com/roach88/treasury/internal/types"
)

// WithdrawReward pays a pull recipient its accrued reward, or as much of it as
// the budget holds. Whatever the budget cannot cover stays unpaid.
func (m *Module) WithdrawReward(origin types.Origin, t BudgetType, user types.MemberID) error {
	account, err := auth.EnsureMember(origin, m.members, user)
	if err != nil {
		if errors.Is(err, auth.ErrNotMemberAccount) {
			return fmt.Errorf("%w: user %s", ErrBudgetUserIDNotMatchAccount, user)
		}
		return err
	}

	recipient, ok := m.recipients.Get(t, user)
	if !ok {
		return fmt.Errorf("%w: user %s of budget %s", ErrNotRewardRecipient, user, t)
	}
	if !recipient.PullRewardEnabled {
		return ErrNotPullRewardRecipient
	}

	now := m.now()
	reward := recipient.CurrentReward(now)
	if reward == 0 {
		return ErrNoRewardNow
	}

	b, ok := m.budgets.Get(t)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidBudget, t)
	}
	if b.Balance == 0 {
		return fmt.Errorf("%w: %s", ErrBudgetDepleted, t)
	}

	toPay := types.Min(reward, b.Balance)
	if err := m.ledger.CanDeposit(account, toPay); err != nil {
		return fmt.Errorf("%w: %w", ErrPayoutRejected, err)
	}

	// Validation done; mutate.
	missing := reward - toPay
	b.Balance -= toPay
	m.budgets.Insert(t, b)
	recipient.UnpaidReward = missing
	recipient.LastPaymentBlock = now
	m.recipients.Insert(t, user, recipient)
	if err := m.ledger.Deposit(account, toPay); err != nil {
		return fmt.Errorf("pay reward: %w", err)
	}

	m.logger.Debug("reward withdrawn", "budget", t, "user", user, "paid", toPay, "unpaid", missing)
	if missing > 0 {
		m.events.Deposit(RewardPartialWithdrawal{BudgetType: t, UserID: user, Account: account, Amount: toPay, Unpaid: missing})
		return nil
	}
	m.events.Deposit(RewardWithdrawal{BudgetType: t, UserID: user, Account: account, Amount: toPay})
	return nil
}
