package bounty

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/treasury/internal/types"
)

// BountyID identifies a bounty. Ids start at 1 and are never reused.
type BountyID uint64

// EntryID identifies a work entry. Ids start at 1 and are never reused.
type EntryID uint64

// Config holds the engine limits.
type Config struct {
	MinCherry      types.Balance
	MinFunding     types.Balance
	MaxWorkEntries int
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{
		MinCherry:      10,
		MinFunding:     50,
		MaxWorkEntries: 20,
	}
}

// CreationParams are the immutable terms of a bounty.
type CreationParams struct {
	Creator        types.Actor
	Cherry         types.Balance
	EntrantStake   types.Balance
	MinAmount      types.Balance
	MaxAmount      types.Balance
	CreatorFunding types.Balance
	WorkPeriod     types.BlockNumber
	JudgingPeriod  types.BlockNumber
	// FundingPeriod, when set, closes funding that many blocks after creation.
	FundingPeriod *types.BlockNumber
}

type creationParamsJSON struct {
	Creator        types.ActorJSON    `json:"creator"`
	Cherry         types.Balance      `json:"cherry"`
	EntrantStake   types.Balance      `json:"entrant_stake"`
	MinAmount      types.Balance      `json:"min_amount"`
	MaxAmount      types.Balance      `json:"max_amount"`
	CreatorFunding types.Balance      `json:"creator_funding"`
	WorkPeriod     types.BlockNumber  `json:"work_period"`
	JudgingPeriod  types.BlockNumber  `json:"judging_period"`
	FundingPeriod  *types.BlockNumber `json:"funding_period,omitempty"`
}

func (p CreationParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(creationParamsJSON{
		Creator:        types.ActorJSON{Actor: p.Creator},
		Cherry:         p.Cherry,
		EntrantStake:   p.EntrantStake,
		MinAmount:      p.MinAmount,
		MaxAmount:      p.MaxAmount,
		CreatorFunding: p.CreatorFunding,
		WorkPeriod:     p.WorkPeriod,
		JudgingPeriod:  p.JudgingPeriod,
		FundingPeriod:  p.FundingPeriod,
	})
}

func (p *CreationParams) UnmarshalJSON(data []byte) error {
	var w creationParamsJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return fmt.Errorf("creation params: %w", err)
	}
	if w.Creator.Actor == nil {
		return fmt.Errorf("creation params: creator is required")
	}
	*p = CreationParams{
		Creator:        w.Creator.Actor,
		Cherry:         w.Cherry,
		EntrantStake:   w.EntrantStake,
		MinAmount:      w.MinAmount,
		MaxAmount:      w.MaxAmount,
		CreatorFunding: w.CreatorFunding,
		WorkPeriod:     w.WorkPeriod,
		JudgingPeriod:  w.JudgingPeriod,
		FundingPeriod:  w.FundingPeriod,
	}
	return nil
}

// Milestone is the stored lifecycle tag of a bounty.
//
// Sealed: Created, MaxFundingReached, Canceled and CreatorFundsWithdrawn.
type Milestone interface {
	milestone()
	Kind() string
}

// Created is a bounty whose funding window is open.
type Created struct {
	CreatedAt types.BlockNumber `json:"created_at"`
}

// MaxFundingReached is a bounty whose funding reached MaxAmount.
type MaxFundingReached struct {
	ReachedAt         types.BlockNumber `json:"max_funding_reached_at"`
	ReachedOnCreation bool              `json:"reached_on_creation"`
}

// Canceled is a bounty stopped by its creator or vetoed by the council.
type Canceled struct{}

// CreatorFundsWithdrawn is a bounty whose creator reclaimed its share.
type CreatorFundsWithdrawn struct{}

func (Created) milestone()               {}
func (MaxFundingReached) milestone()     {}
func (Canceled) milestone()              {}
func (CreatorFundsWithdrawn) milestone() {}

func (Created) Kind() string               { return "created" }
func (MaxFundingReached) Kind() string     { return "max_funding_reached" }
func (Canceled) Kind() string              { return "canceled" }
func (CreatorFundsWithdrawn) Kind() string { return "creator_funds_withdrawn" }

// Bounty is the stored bounty record.
type Bounty struct {
	ID       BountyID
	Creation CreationParams
	// TotalFunding is creator funding plus everything funders contributed.
	// Withdrawals do not decrease it.
	TotalFunding types.Balance
	Milestone    Milestone
	// CherryPaid is the part of the cherry already paid out.
	CherryPaid types.Balance
	// SlashedStakes is forfeited entrant stake held in escrow for the creator.
	SlashedStakes types.Balance
}

// FunderTotal is the funding contributed by funders other than the creator.
func (b Bounty) FunderTotal() types.Balance {
	return b.TotalFunding.SaturatingSub(b.Creation.CreatorFunding)
}

// CherryRemaining is the part of the cherry still in escrow.
func (b Bounty) CherryRemaining() types.Balance {
	return b.Creation.Cherry.SaturatingSub(b.CherryPaid)
}

// CreatorFundingRemaining is the creator funding still in escrow.
func (b Bounty) CreatorFundingRemaining() types.Balance {
	if _, ok := b.Milestone.(CreatorFundsWithdrawn); ok {
		return 0
	}
	return b.Creation.CreatorFunding
}

type bountyJSON struct {
	ID            BountyID        `json:"id"`
	Creation      CreationParams  `json:"creation_params"`
	TotalFunding  types.Balance   `json:"total_funding"`
	Milestone     json.RawMessage `json:"milestone"`
	CherryPaid    types.Balance   `json:"cherry_paid"`
	SlashedStakes types.Balance   `json:"slashed_stakes"`
}

func (b Bounty) MarshalJSON() ([]byte, error) {
	ms, err := marshalMilestone(b.Milestone)
	if err != nil {
		return nil, err
	}
	return json.Marshal(bountyJSON{
		ID:            b.ID,
		Creation:      b.Creation,
		TotalFunding:  b.TotalFunding,
		Milestone:     ms,
		CherryPaid:    b.CherryPaid,
		SlashedStakes: b.SlashedStakes,
	})
}

func marshalMilestone(m Milestone) ([]byte, error) {
	fields := map[string]any{}
	switch v := m.(type) {
	case Created:
		fields["created_at"] = v.CreatedAt
	case MaxFundingReached:
		fields["max_funding_reached_at"] = v.ReachedAt
		fields["reached_on_creation"] = v.ReachedOnCreation
	case Canceled, CreatorFundsWithdrawn:
	default:
		return nil, fmt.Errorf("unknown milestone %T", m)
	}
	fields["kind"] = m.Kind()
	return json.Marshal(fields)
}

// Contribution is what one funder put into a bounty.
type Contribution struct {
	Funder types.Actor
	Amount types.Balance
}

func (c Contribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Funder types.ActorJSON `json:"funder"`
		Amount types.Balance   `json:"amount"`
	}{types.ActorJSON{Actor: c.Funder}, c.Amount})
}

// WorkEntry is a member's staked claim to work on a bounty.
type WorkEntry struct {
	ID             EntryID           `json:"id"`
	BountyID       BountyID          `json:"bounty_id"`
	MemberID       types.MemberID    `json:"member_id"`
	StakingAccount *types.AccountID  `json:"staking_account,omitempty"`
	StakedAmount   types.Balance     `json:"staked_amount"`
	SubmittedAt    types.BlockNumber `json:"submitted_at"`
}
