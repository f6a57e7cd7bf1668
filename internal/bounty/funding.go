package bounty

import (
	"fmt"

	"github.com/roach88/treasury/internal/auth"
	"github.com/roach88/treasury/internal/types"
)

// FundBounty moves amount from funder into the escrow of bounty id.
func (m *Module) FundBounty(origin types.Origin, funder types.Actor, id BountyID, amount types.Balance) error {
	p, err := m.resolveParty(origin, funder)
	if err != nil {
		return err
	}
	b, err := m.getBounty(id)
	if err != nil {
		return err
	}
	now := m.now()
	if _, err := ensureAction(b, now, ActionFund); err != nil {
		return err
	}
	if amount == 0 {
		return ErrZeroFundingAmount
	}
	if amount < m.cfg.MinFunding {
		return fmt.Errorf("%w: %d < %d", ErrFundingLessThenMinimumAllowed, amount, m.cfg.MinFunding)
	}
	if err := m.ensureCanPay(p, amount); err != nil {
		return err
	}

	// Validation done; mutate.
	if err := m.pay(p, EscrowAccount(id), amount); err != nil {
		return fmt.Errorf("fund escrow: %w", err)
	}
	c, _ := m.contributions.Get(id, funder.Key())
	c.Funder = funder
	c.Amount = c.Amount.SaturatingAdd(amount)
	m.contributions.Insert(id, funder.Key(), c)

	b.TotalFunding = b.TotalFunding.SaturatingAdd(amount)
	b.Milestone = nextMilestone(b, ActionFund, now, b.TotalFunding)
	m.bounties.Insert(id, b)

	m.logger.Debug("bounty funded", "bounty", id, "funder", funder, "amount", amount, "total", b.TotalFunding)
	if _, reached := b.Milestone.(MaxFundingReached); reached {
		m.events.Deposit(BountyMaxFundingReached{BountyID: id, Funder: types.ActorJSON{Actor: funder}, Amount: amount})
		return nil
	}
	m.events.Deposit(BountyFunded{BountyID: id, Funder: types.ActorJSON{Actor: funder}, Amount: amount})
	return nil
}

// CancelBounty lets the creator stop a bounty nobody else funded yet.
func (m *Module) CancelBounty(origin types.Origin, creator types.Actor, id BountyID) error {
	if _, err := m.resolveParty(origin, creator); err != nil {
		return err
	}
	b, err := m.getBounty(id)
	if err != nil {
		return err
	}
	if b.Creation.Creator != creator {
		return fmt.Errorf("%w: bounty %d was created by %s", ErrNotBountyActor, id, b.Creation.Creator)
	}
	now := m.now()
	if err := m.ensureRevocable(b, now, ActionCancel); err != nil {
		return err
	}

	b.Milestone = nextMilestone(b, ActionCancel, now, b.TotalFunding)
	m.bounties.Insert(id, b)
	m.logger.Debug("bounty canceled", "bounty", id)
	m.events.Deposit(BountyCanceled{BountyID: id, Creator: types.ActorJSON{Actor: creator}})
	return nil
}

// VetoBounty lets the council cancel any bounty nobody else funded yet.
func (m *Module) VetoBounty(origin types.Origin, id BountyID) error {
	if err := auth.EnsureRoot(origin); err != nil {
		return err
	}
	b, err := m.getBounty(id)
	if err != nil {
		return err
	}
	now := m.now()
	if err := m.ensureRevocable(b, now, ActionVeto); err != nil {
		return err
	}

	b.Milestone = nextMilestone(b, ActionVeto, now, b.TotalFunding)
	m.bounties.Insert(id, b)
	m.logger.Debug("bounty vetoed", "bounty", id)
	m.events.Deposit(BountyVetoed{BountyID: id})
	return nil
}

// ensureRevocable allows cancel and veto only while funding and before any
// funder contributed.
func (m *Module) ensureRevocable(b Bounty, now types.BlockNumber, a Action) error {
	if _, err := ensureAction(b, now, a); err != nil {
		return err
	}
	if m.contributions.CountPrefix(b.ID) > 0 {
		return fmt.Errorf("%w: bounty %d already has funders", ErrInvalidBountyStage, b.ID)
	}
	return nil
}
