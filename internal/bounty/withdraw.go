package bounty

import (
	"fmt"

	"github.com/roach88/treasury/internal/types"
)

// WithdrawFunding returns a funder's contribution and its share of the
// cherry once the bounty failed, was canceled or closed without a winner.
func (m *Module) WithdrawFunding(origin types.Origin, funder types.Actor, id BountyID) error {
	p, err := m.resolveParty(origin, funder)
	if err != nil {
		return err
	}
	b, err := m.getBounty(id)
	if err != nil {
		return err
	}
	if _, err := ensureAction(b, m.now(), ActionWithdrawFunding); err != nil {
		return err
	}
	c, ok := m.contributions.Get(id, funder.Key())
	if !ok {
		return fmt.Errorf("%w: %s on bounty %d", ErrNotBountyFunder, funder, id)
	}
	share := m.cherryShare(b, c)
	amount := c.Amount.SaturatingAdd(share)
	escrow := EscrowAccount(id)
	if err := m.ensureCanRefund(p, escrow, amount); err != nil {
		return err
	}

	// Validation done; mutate.
	if err := m.refund(p, escrow, amount); err != nil {
		return fmt.Errorf("refund funder: %w", err)
	}
	m.contributions.Remove(id, funder.Key())
	b.CherryPaid = b.CherryPaid.SaturatingAdd(share)
	m.bounties.Insert(id, b)

	m.logger.Debug("funding withdrawn", "bounty", id, "funder", funder, "amount", c.Amount, "cherry_share", share)
	if m.removeIfDrained(b) {
		m.events.Deposit(BountyRemoved{BountyID: id})
		return nil
	}
	m.events.Deposit(BountyFundingWithdrawal{BountyID: id, Funder: types.ActorJSON{Actor: funder}, Amount: c.Amount, CherryShare: share})
	return nil
}

// cherryShare is the part of the cherry owed to contribution c: pro rata to
// the funders' total, floored. The last funder to withdraw takes whatever is
// left, so the escrow ends cherry free.
func (m *Module) cherryShare(b Bounty, c Contribution) types.Balance {
	remaining := b.CherryRemaining()
	if m.contributions.CountPrefix(b.ID) == 1 {
		return remaining
	}
	share := types.Balance(types.MulDiv(uint64(b.Creation.Cherry), uint64(c.Amount), uint64(b.FunderTotal())))
	return types.Min(share, remaining)
}

// WithdrawCreatorFunding returns the creator funding, the forfeited stakes
// and, when nobody else funded the bounty, the cherry.
func (m *Module) WithdrawCreatorFunding(origin types.Origin, creator types.Actor, id BountyID) error {
	p, err := m.resolveParty(origin, creator)
	if err != nil {
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
	if _, err := ensureAction(b, now, ActionWithdrawCreatorFunding); err != nil {
		return err
	}
	var cherry types.Balance
	if b.FunderTotal() == 0 {
		cherry = b.CherryRemaining()
	}
	amount := b.Creation.CreatorFunding.SaturatingAdd(b.SlashedStakes).SaturatingAdd(cherry)
	if amount == 0 {
		return fmt.Errorf("%w: bounty %d", ErrNothingToWithdraw, id)
	}
	escrow := EscrowAccount(id)
	if err := m.ensureCanRefund(p, escrow, amount); err != nil {
		return err
	}

	// Validation done; mutate.
	if err := m.refund(p, escrow, amount); err != nil {
		return fmt.Errorf("refund creator: %w", err)
	}
	b.CherryPaid = b.CherryPaid.SaturatingAdd(cherry)
	b.SlashedStakes = 0
	b.Milestone = nextMilestone(b, ActionWithdrawCreatorFunding, now, b.TotalFunding)
	m.bounties.Insert(id, b)

	m.logger.Debug("creator funding withdrawn", "bounty", id, "creator", creator, "amount", amount)
	if m.removeIfDrained(b) {
		m.events.Deposit(BountyRemoved{BountyID: id})
		return nil
	}
	m.events.Deposit(BountyCreatorFundingWithdrawal{BountyID: id, Creator: types.ActorJSON{Actor: creator}, Amount: amount})
	return nil
}
