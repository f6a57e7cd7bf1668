package runtime

import (
	"github.com/samber/lo"

	"github.com/roach88/treasury/internal/bounty"
	"github.com/roach88/treasury/internal/budget"
	"github.com/roach88/treasury/internal/ir"
	"github.com/roach88/treasury/internal/ledger"
	"github.com/roach88/treasury/internal/types"
)

// Head is the position of the chain.
type Head struct {
	Block         types.BlockNumber `json:"block"`
	Seq           int64             `json:"seq"`
	Session       string            `json:"session"`
	GenesisHash   string            `json:"genesis_hash"`
	LastFinalized *ir.BlockRecord   `json:"last_finalized,omitempty"`
}

// Head returns the current chain position.
func (r *Runtime) Head() Head {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Head{
		Block:         r.block.Block,
		Seq:           r.clock.Current(),
		Session:       r.session,
		GenesisHash:   r.genesisHash,
		LastFinalized: r.last,
	}
}

// BountyView is a bounty with its derived stage and related records.
type BountyView struct {
	Bounty        bounty.Bounty         `json:"bounty"`
	Stage         string                `json:"stage"`
	Escrow        types.Balance         `json:"escrow"`
	Contributed   types.Balance         `json:"contributed"`
	Contributions []bounty.Contribution `json:"contributions"`
	WorkEntries   []bounty.WorkEntry    `json:"work_entries"`
}

// Bounty returns the view of bounty id.
func (r *Runtime) Bounty(id bounty.BountyID) (BountyView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bounties.Bounty(id)
	if !ok {
		return BountyView{}, false
	}
	contributions := r.bounties.Contributions(id)
	entries := r.bounties.WorkEntries(id)
	if contributions == nil {
		contributions = []bounty.Contribution{}
	}
	if entries == nil {
		entries = []bounty.WorkEntry{}
	}
	return BountyView{
		Bounty: b,
		Stage:  b.Stage(r.block.Block).String(),
		Escrow: r.ledger.FreeBalance(bounty.EscrowAccount(id)),
		Contributed: lo.SumBy(contributions, func(c bounty.Contribution) types.Balance {
			return c.Amount
		}),
		Contributions: contributions,
		WorkEntries:   entries,
	}, true
}

// BountyIDs returns the ids of stored bounties.
func (r *Runtime) BountyIDs() []bounty.BountyID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bounties.Bounties()
}

// RecipientView is a reward checkpoint with the reward accrued by now.
type RecipientView struct {
	budget.RewardRecipient
	CurrentReward types.Balance `json:"current_reward"`
}

// BudgetView is a budget with its recipients.
type BudgetView struct {
	Type budget.BudgetType `json:"type"`
	budget.Budget
	Recipients []RecipientView `json:"recipients"`
}

// Budget returns the view of budget t.
func (r *Runtime) Budget(t budget.BudgetType) (BudgetView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.budgets.Budget(t)
	if !ok {
		return BudgetView{}, false
	}
	now := r.block.Block
	return BudgetView{
		Type:   t,
		Budget: b,
		Recipients: lo.Map(r.budgets.Recipients(t), func(rc budget.RewardRecipient, _ int) RecipientView {
			return RecipientView{RewardRecipient: rc, CurrentReward: rc.CurrentReward(now)}
		}),
	}, true
}

// Recipient returns the view of user in budget t.
func (r *Runtime) Recipient(t budget.BudgetType, user types.MemberID) (RecipientView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rc, ok := r.budgets.Controller(t).Recipient(user)
	if !ok {
		return RecipientView{}, false
	}
	return RecipientView{RewardRecipient: rc, CurrentReward: rc.CurrentReward(r.block.Block)}, true
}

// Account returns the balances of account id.
func (r *Runtime) Account(id types.AccountID) ledger.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ledger.Account{
		Free:     r.ledger.FreeBalance(id),
		Reserved: r.ledger.ReservedBalance(id),
	}
}
