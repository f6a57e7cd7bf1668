package bounty

import "github.com/roach88/treasury/internal/types"

type BountyCreated struct {
	BountyID BountyID       `json:"bounty_id"`
	Params   CreationParams `json:"params"`
	Metadata string         `json:"metadata,omitempty"`
}

type BountyFunded struct {
	BountyID BountyID        `json:"bounty_id"`
	Funder   types.ActorJSON `json:"funder"`
	Amount   types.Balance   `json:"amount"`
}

// BountyMaxFundingReached replaces BountyFunded for the funding call that
// reaches MaxAmount.
type BountyMaxFundingReached struct {
	BountyID BountyID        `json:"bounty_id"`
	Funder   types.ActorJSON `json:"funder"`
	Amount   types.Balance   `json:"amount"`
}

type BountyCanceled struct {
	BountyID BountyID        `json:"bounty_id"`
	Creator  types.ActorJSON `json:"creator"`
}

type BountyVetoed struct {
	BountyID BountyID `json:"bounty_id"`
}

type BountyFundingWithdrawal struct {
	BountyID    BountyID        `json:"bounty_id"`
	Funder      types.ActorJSON `json:"funder"`
	Amount      types.Balance   `json:"amount"`
	CherryShare types.Balance   `json:"cherry_share"`
}

type BountyCreatorFundingWithdrawal struct {
	BountyID BountyID        `json:"bounty_id"`
	Creator  types.ActorJSON `json:"creator"`
	Amount   types.Balance   `json:"amount"`
}

// BountyRemoved replaces the withdrawal event of the call that empties the
// escrow.
type BountyRemoved struct {
	BountyID BountyID `json:"bounty_id"`
}

type WorkEntryAnnounced struct {
	BountyID       BountyID         `json:"bounty_id"`
	EntryID        EntryID          `json:"entry_id"`
	MemberID       types.MemberID   `json:"member_id"`
	StakingAccount *types.AccountID `json:"staking_account,omitempty"`
}

type WorkEntryWithdrawn struct {
	BountyID BountyID       `json:"bounty_id"`
	EntryID  EntryID        `json:"entry_id"`
	MemberID types.MemberID `json:"member_id"`
	Refund   types.Balance  `json:"refund"`
	Slashed  types.Balance  `json:"slashed"`
}

func (BountyCreated) Module() string                  { return module }
func (BountyFunded) Module() string                   { return module }
func (BountyMaxFundingReached) Module() string        { return module }
func (BountyCanceled) Module() string                 { return module }
func (BountyVetoed) Module() string                   { return module }
func (BountyFundingWithdrawal) Module() string        { return module }
func (BountyCreatorFundingWithdrawal) Module() string { return module }
func (BountyRemoved) Module() string                  { return module }
func (WorkEntryAnnounced) Module() string             { return module }
func (WorkEntryWithdrawn) Module() string             { return module }

func (BountyCreated) Name() string                  { return "BountyCreated" }
func (BountyFunded) Name() string                   { return "BountyFunded" }
func (BountyMaxFundingReached) Name() string        { return "BountyMaxFundingReached" }
func (BountyCanceled) Name() string                 { return "BountyCanceled" }
func (BountyVetoed) Name() string                   { return "BountyVetoed" }
func (BountyFundingWithdrawal) Name() string        { return "BountyFundingWithdrawal" }
func (BountyCreatorFundingWithdrawal) Name() string { return "BountyCreatorFundingWithdrawal" }
func (BountyRemoved) Name() string                  { return "BountyRemoved" }
func (WorkEntryAnnounced) Name() string             { return "WorkEntryAnnounced" }
func (WorkEntryWithdrawn) Name() string             { return "WorkEntryWithdrawn" }
