package bounty

import (
	"fmt"

	"github.com/roach88/treasury/internal/auth"
	"github.com/roach88/treasury/internal/types"
)

// AnnounceWorkEntry registers member as working on bounty id and reserves the
// entrant stake on stakingAccount.
func (m *Module) AnnounceWorkEntry(origin types.Origin, member types.MemberID, id BountyID, stakingAccount *types.AccountID) error {
	if _, err := auth.EnsureMember(origin, m.members, member); err != nil {
		return err
	}
	b, err := m.getBounty(id)
	if err != nil {
		return err
	}
	now := m.now()
	if _, err := ensureAction(b, now, ActionAnnounceWorkEntry); err != nil {
		return err
	}
	if m.entries.CountPrefix(id) >= m.cfg.MaxWorkEntries {
		return fmt.Errorf("%w: bounty %d has %d entries", ErrMaxWorkEntryLimitReached, id, m.cfg.MaxWorkEntries)
	}
	stake := b.Creation.EntrantStake
	if stake > 0 {
		if stakingAccount == nil {
			return ErrNoStakingAccountProvided
		}
		if !m.members.IsStakingAccount(member, *stakingAccount) {
			return fmt.Errorf("%w: %s for member %s", ErrInvalidStakingAccountForMember, *stakingAccount, member)
		}
		if m.stakingAccountBusy(id, *stakingAccount) {
			return fmt.Errorf("%w: %s", ErrConflictingStakes, *stakingAccount)
		}
		if err := m.ledger.CanReserve(*stakingAccount, stake); err != nil {
			return fmt.Errorf("%w: %w", ErrInsufficientBalanceForStake, err)
		}
	}

	// Validation done; mutate.
	if stake > 0 {
		if err := m.ledger.Reserve(*stakingAccount, stake); err != nil {
			return fmt.Errorf("reserve stake: %w", err)
		}
	}
	entryID := EntryID(m.entryCount.Get() + 1)
	m.entryCount.Set(uint64(entryID))
	m.entries.Insert(id, entryID, WorkEntry{
		ID:             entryID,
		BountyID:       id,
		MemberID:       member,
		StakingAccount: stakingAccount,
		StakedAmount:   stake,
		SubmittedAt:    now,
	})

	m.logger.Debug("work entry announced", "bounty", id, "entry", entryID, "member", member, "stake", stake)
	m.events.Deposit(WorkEntryAnnounced{BountyID: id, EntryID: entryID, MemberID: member, StakingAccount: stakingAccount})
	return nil
}

func (m *Module) stakingAccountBusy(id BountyID, account types.AccountID) bool {
	for _, e := range m.entries.Prefix(id) {
		if e.StakedAmount > 0 && e.StakingAccount != nil && *e.StakingAccount == account {
			return true
		}
	}
	return false
}

// WithdrawWorkEntry removes a work entry and unlocks its stake. During the
// work period a share of the stake proportional to the elapsed blocks is
// forfeited into the escrow.
func (m *Module) WithdrawWorkEntry(origin types.Origin, member types.MemberID, id BountyID, entryID EntryID) error {
	if _, err := auth.EnsureMember(origin, m.members, member); err != nil {
		return err
	}
	b, err := m.getBounty(id)
	if err != nil {
		return err
	}
	entry, ok := m.entries.Get(id, entryID)
	if !ok {
		return fmt.Errorf("%w: entry %d on bounty %d", ErrWorkEntryDoesntExist, entryID, id)
	}
	if entry.MemberID != member {
		return fmt.Errorf("%w: entry %d", ErrWorkEntryDoesntBelongToMember, entryID)
	}
	now := m.now()
	stage, err := ensureAction(b, now, ActionWithdrawWorkEntry)
	if err != nil {
		return err
	}
	var slashed types.Balance
	if stage == StageWorkSubmission {
		slashed = SlashedStake(entry.StakedAmount, now.Since(entry.SubmittedAt), b.Creation.WorkPeriod)
	}
	refund := entry.StakedAmount - slashed
	if entry.StakedAmount > 0 && m.ledger.ReservedBalance(*entry.StakingAccount) < entry.StakedAmount {
		return fmt.Errorf("%w: stake of entry %d is no longer reserved", ErrEscrowInconsistent, entryID)
	}

	// Validation done; mutate.
	if entry.StakedAmount > 0 {
		m.ledger.Unreserve(*entry.StakingAccount, refund)
		if err := m.ledger.RepatriateReserved(*entry.StakingAccount, EscrowAccount(id), slashed); err != nil {
			return fmt.Errorf("forfeit stake: %w", err)
		}
	}
	m.entries.Remove(id, entryID)
	b.SlashedStakes = b.SlashedStakes.SaturatingAdd(slashed)
	m.bounties.Insert(id, b)

	m.logger.Debug("work entry withdrawn", "bounty", id, "entry", entryID, "refund", refund, "slashed", slashed)
	if stage != StageWorkSubmission && m.removeIfDrained(b) {
		m.events.Deposit(BountyRemoved{BountyID: id})
		return nil
	}
	m.events.Deposit(WorkEntryWithdrawn{BountyID: id, EntryID: entryID, MemberID: member, Refund: refund, Slashed: slashed})
	return nil
}

// SlashedStake is the part of stake forfeited after elapsed blocks of a work
// period: stake * elapsed / period floored, and the whole stake once the
// period has passed.
func SlashedStake(stake types.Balance, elapsed, period types.BlockNumber) types.Balance {
	if period == 0 || elapsed >= period {
		return stake
	}
	return types.Balance(types.MulDiv(uint64(stake), uint64(elapsed), uint64(period)))
}
