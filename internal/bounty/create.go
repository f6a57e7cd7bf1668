package bounty

import (
	"fmt"

	"github.com/roach88/treasury/internal/types"
)

// CreateBounty creates a bounty for params.Creator and moves the cherry and
// creator funding into its escrow. The council pays from its budget, a member
// from the account that signed the call.
func (m *Module) CreateBounty(origin types.Origin, params CreationParams, metadata []byte) error {
	p, err := m.resolveParty(origin, params.Creator)
	if err != nil {
		return err
	}
	if err := m.validateParams(params); err != nil {
		return err
	}
	amount := params.Cherry.SaturatingAdd(params.CreatorFunding)
	if amount == types.MaxBalance {
		return fmt.Errorf("%w: cherry plus creator funding overflows", ErrInsufficientBalanceForBounty)
	}
	if err := m.ensureCanPay(p, amount); err != nil {
		return err
	}

	// Validation done; mutate.
	now := m.now()
	id := BountyID(m.bountyCount.Get() + 1)
	if err := m.pay(p, EscrowAccount(id), amount); err != nil {
		return fmt.Errorf("fund escrow: %w", err)
	}
	m.bountyCount.Set(uint64(id))

	var milestone Milestone = Created{CreatedAt: now}
	if params.CreatorFunding >= params.MaxAmount {
		milestone = MaxFundingReached{ReachedAt: now, ReachedOnCreation: true}
	}
	m.bounties.Insert(id, Bounty{
		ID:           id,
		Creation:     params,
		TotalFunding: params.CreatorFunding,
		Milestone:    milestone,
	})

	m.logger.Debug("bounty created", "bounty", id, "creator", params.Creator, "cherry", params.Cherry, "milestone", milestone.Kind())
	m.events.Deposit(BountyCreated{BountyID: id, Params: params, Metadata: string(metadata)})
	return nil
}

func (m *Module) validateParams(p CreationParams) error {
	if p.Cherry < m.cfg.MinCherry {
		return fmt.Errorf("%w: %d < %d", ErrCherryLessThenMinimumAllowed, p.Cherry, m.cfg.MinCherry)
	}
	if p.WorkPeriod == 0 {
		return ErrWorkPeriodCannotBeZero
	}
	if p.JudgingPeriod == 0 {
		return ErrJudgingPeriodCannotBeZero
	}
	if p.FundingPeriod != nil && *p.FundingPeriod == 0 {
		return ErrFundingPeriodCannotBeZero
	}
	if p.MinAmount > p.MaxAmount {
		return fmt.Errorf("%w: %d > %d", ErrMinFundingAmountCannotBeGreaterThanMaxAmount, p.MinAmount, p.MaxAmount)
	}
	return nil
}
