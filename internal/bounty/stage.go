package bounty

import (
	"fmt"
	"slices"

	"github.com/roach88/treasury/internal/types"
)

// Stage is the lifecycle stage of a bounty at a given block.
type Stage int

const (
	// StageFunding accepts funding.
	StageFunding Stage = iota + 1
	// StageFundingExpired is a bounty whose funding period ended below MinAmount.
	StageFundingExpired
	// StageWorkSubmission accepts work entries.
	StageWorkSubmission
	// StageJudgment is the judging period; entries are locked.
	StageJudgment
	// StageWithdrawalWindow follows a judging period that selected no winner.
	StageWithdrawalWindow
	// StageCanceled is a canceled or vetoed bounty.
	StageCanceled
	// StageCreatorFundsWithdrawn is a bounty whose creator reclaimed its share.
	StageCreatorFundsWithdrawn
)

var stageNames = map[Stage]string{
	StageFunding:               "Funding",
	StageFundingExpired:        "FundingExpired",
	StageWorkSubmission:        "WorkSubmission",
	StageJudgment:              "Judgment",
	StageWithdrawalWindow:      "WithdrawalWindow",
	StageCanceled:              "Canceled",
	StageCreatorFundsWithdrawn: "CreatorFundsWithdrawn",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Action is a call that acts on an existing bounty.
type Action string

const (
	ActionFund                   Action = "fund_bounty"
	ActionCancel                 Action = "cancel_bounty"
	ActionVeto                   Action = "veto_bounty"
	ActionAnnounceWorkEntry      Action = "announce_work_entry"
	ActionWithdrawWorkEntry      Action = "withdraw_work_entry"
	ActionWithdrawFunding        Action = "withdraw_funding"
	ActionWithdrawCreatorFunding Action = "withdraw_creator_funding"
)

// allowedActions is the transition table: the actions each stage accepts.
var allowedActions = map[Stage][]Action{
	StageFunding:               {ActionFund, ActionCancel, ActionVeto},
	StageFundingExpired:        {ActionWithdrawFunding, ActionWithdrawCreatorFunding},
	StageWorkSubmission:        {ActionAnnounceWorkEntry, ActionWithdrawWorkEntry},
	StageJudgment:              {},
	StageWithdrawalWindow:      {ActionWithdrawWorkEntry, ActionWithdrawFunding, ActionWithdrawCreatorFunding},
	StageCanceled:              {ActionWithdrawFunding, ActionWithdrawCreatorFunding},
	StageCreatorFundsWithdrawn: {ActionWithdrawWorkEntry, ActionWithdrawFunding},
}

// Allows reports whether stage s accepts action a.
func (s Stage) Allows(a Action) bool {
	return slices.Contains(allowedActions[s], a)
}

// Stage derives the stage of b at block now. Funding expiry is computed
// here from stored blocks rather than stored as a milestone.
func (b Bounty) Stage(now types.BlockNumber) Stage {
	switch m := b.Milestone.(type) {
	case Created:
		if b.Creation.FundingPeriod == nil || now <= m.CreatedAt.SaturatingAdd(*b.Creation.FundingPeriod) {
			return StageFunding
		}
		start, ok := b.WorkPeriodStart()
		if !ok {
			return StageFundingExpired
		}
		return b.workStage(start, now)
	case MaxFundingReached:
		start, _ := b.WorkPeriodStart()
		return b.workStage(start, now)
	case Canceled:
		return StageCanceled
	case CreatorFundsWithdrawn:
		return StageCreatorFundsWithdrawn
	default:
		panic(fmt.Sprintf("bounty %d: unknown milestone %T", b.ID, b.Milestone))
	}
}

// WorkPeriodStart returns the block the work period of b starts at, if b
// has been funded successfully.
func (b Bounty) WorkPeriodStart() (types.BlockNumber, bool) {
	switch m := b.Milestone.(type) {
	case MaxFundingReached:
		return m.ReachedAt, true
	case Created:
		if b.Creation.FundingPeriod != nil && b.TotalFunding >= b.Creation.MinAmount {
			return m.CreatedAt.SaturatingAdd(*b.Creation.FundingPeriod), true
		}
	}
	return 0, false
}

func (b Bounty) workStage(start, now types.BlockNumber) Stage {
	workEnd := start.SaturatingAdd(b.Creation.WorkPeriod)
	if now <= workEnd {
		return StageWorkSubmission
	}
	if now <= workEnd.SaturatingAdd(b.Creation.JudgingPeriod) {
		return StageJudgment
	}
	return StageWithdrawalWindow
}

// ensureAction fails with ErrInvalidBountyStage unless b's current stage
// accepts a. It returns the stage.
func ensureAction(b Bounty, now types.BlockNumber, a Action) (Stage, error) {
	stage := b.Stage(now)
	if !stage.Allows(a) {
		return stage, fmt.Errorf("%w: %s not allowed in stage %s", ErrInvalidBountyStage, a, stage)
	}
	return stage, nil
}

// nextMilestone returns the milestone b moves to after a succeeds at now.
// totalAfter is the total funding once a is applied.
func nextMilestone(b Bounty, a Action, now types.BlockNumber, totalAfter types.Balance) Milestone {
	switch a {
	case ActionFund:
		if totalAfter >= b.Creation.MaxAmount {
			return MaxFundingReached{ReachedAt: now}
		}
	case ActionCancel, ActionVeto:
		return Canceled{}
	case ActionWithdrawCreatorFunding:
		return CreatorFundsWithdrawn{}
	}
	return b.Milestone
}
