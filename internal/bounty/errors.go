package bounty

import "github.com/roach88/treasury/internal/types"

const module = "bounty"

var (
	ErrBountyDoesntExist                            = types.NewDispatchError(module, "BountyDoesntExist", "bounty doesn't exist")
	ErrCherryLessThenMinimumAllowed                 = types.NewDispatchError(module, "CherryLessThenMinimumAllowed", "cherry less than minimum allowed")
	ErrWorkPeriodCannotBeZero                       = types.NewDispatchError(module, "WorkPeriodCannotBeZero", "work period cannot be zero")
	ErrJudgingPeriodCannotBeZero                    = types.NewDispatchError(module, "JudgingPeriodCannotBeZero", "judging period cannot be zero")
	ErrFundingPeriodCannotBeZero                    = types.NewDispatchError(module, "FundingPeriodCannotBeZero", "funding period cannot be zero")
	ErrMinFundingAmountCannotBeGreaterThanMaxAmount = types.NewDispatchError(module, "MinFundingAmountCannotBeGreaterThanMaxAmount", "min funding amount cannot be greater than max amount")
	ErrInsufficientBalanceForBounty                 = types.NewDispatchError(module, "InsufficientBalanceForBounty", "insufficient balance for bounty")
	ErrZeroFundingAmount                            = types.NewDispatchError(module, "ZeroFundingAmount", "funding amount cannot be zero")
	ErrFundingLessThenMinimumAllowed                = types.NewDispatchError(module, "FundingLessThenMinimumAllowed", "funding less than minimum allowed")
	ErrInvalidBountyStage                           = types.NewDispatchError(module, "InvalidBountyStage", "invalid bounty stage")
	ErrNotBountyActor                               = types.NewDispatchError(module, "NotBountyActor", "not the bounty creator")
	ErrNotBountyFunder                              = types.NewDispatchError(module, "NotBountyFunder", "not a bounty funder")
	ErrNothingToWithdraw                            = types.NewDispatchError(module, "NothingToWithdraw", "nothing to withdraw")
	ErrNoStakingAccountProvided                     = types.NewDispatchError(module, "NoStakingAccountProvided", "staking account required")
	ErrInvalidStakingAccountForMember               = types.NewDispatchError(module, "InvalidStakingAccountForMember", "staking account is not bound to the member")
	ErrInsufficientBalanceForStake                  = types.NewDispatchError(module, "InsufficientBalanceForStake", "insufficient balance for stake")
	ErrConflictingStakes                            = types.NewDispatchError(module, "ConflictingStakes", "staking account already backs a work entry on this bounty")
	ErrMaxWorkEntryLimitReached                     = types.NewDispatchError(module, "MaxWorkEntryLimitReached", "max work entry limit reached")
	ErrWorkEntryDoesntExist                         = types.NewDispatchError(module, "WorkEntryDoesntExist", "work entry doesn't exist")
	ErrWorkEntryDoesntBelongToMember                = types.NewDispatchError(module, "WorkEntryDoesntBelongToMember", "work entry belongs to another member")
	ErrEscrowInconsistent                           = types.NewDispatchError(module, "EscrowInconsistent", "escrow cannot cover the payout")
)
