package budget

import "github.com/roach88/treasury/internal/types"

// OnFinalize runs the scheduled maintenance of block now: refills first, then
// auto payments.
func (m *Module) OnFinalize(now types.BlockNumber) {
	m.tryRefillBudgets(now)
	m.tryPayRewards(now)
}

func (m *Module) tryRefillBudgets(now types.BlockNumber) {
	for _, t := range m.activeRefills.Get() {
		b, ok := m.budgets.Get(t)
		if !ok || b.Refill == nil || b.Refill.NextRefill != now {
			continue
		}
		b.Balance = b.Balance.SaturatingAdd(b.Refill.Amount)
		refill := *b.Refill
		refill.NextRefill = now.SaturatingAdd(refill.Period)
		b.Refill = &refill
		m.budgets.Insert(t, b)
		m.logger.Debug("budget refilled", "budget", t, "amount", refill.Amount, "balance", b.Balance, "next", refill.NextRefill)
	}
}

type payout struct {
	user      types.MemberID
	recipient RewardRecipient
}

func (m *Module) tryPayRewards(now types.BlockNumber) {
	for _, t := range m.activeAutoPayments.Get() {
		b, ok := m.budgets.Get(t)
		if !ok || b.AutoPayment == nil || b.AutoPayment.NextAutoPayment != now {
			continue
		}

		remaining := b.Balance
		var paid []payout
		for user, r := range m.recipients.Prefix(t) {
			if remaining == 0 {
				break
			}
			if r.AutoPaymentAccount == nil {
				continue
			}
			accrued := r.CurrentReward(now)
			if accrued == 0 {
				continue
			}
			toPay := types.Min(accrued, remaining)
			if err := m.ledger.Deposit(*r.AutoPaymentAccount, toPay); err != nil {
				m.logger.Warn("auto payment skipped", "budget", t, "user", user, "error", err)
				continue
			}
			remaining -= toPay
			r.UnpaidReward = accrued - toPay
			r.LastPaymentBlock = now
			paid = append(paid, payout{user: user, recipient: r})
		}
		for _, p := range paid {
			m.recipients.Insert(t, p.user, p.recipient)
		}

		b.Balance = remaining
		next := *b.AutoPayment
		next.NextAutoPayment = now.SaturatingAdd(next.Period)
		b.AutoPayment = &next
		m.budgets.Insert(t, b)
		m.logger.Debug("rewards auto paid", "budget", t, "recipients", len(paid), "balance", remaining, "next", next.NextAutoPayment)
	}
}
