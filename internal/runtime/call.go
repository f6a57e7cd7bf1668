package runtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/roach88/treasury/internal/bounty"
	"github.com/roach88/treasury/internal/budget"
	"github.com/roach88/treasury/internal/types"
)

// Call is a request to run one method under an origin.
type Call struct {
	Origin types.Origin
	Method string
	Args   json.RawMessage
}

type callJSON struct {
	Origin json.RawMessage `json:"origin"`
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// MarshalJSON encodes {"origin": ..., "method": ..., "args": ...}.
func (c Call) MarshalJSON() ([]byte, error) {
	origin, err := types.MarshalOrigin(c.Origin)
	if err != nil {
		return nil, err
	}
	return json.Marshal(callJSON{Origin: origin, Method: c.Method, Args: c.Args})
}

// UnmarshalJSON decodes the form written by MarshalJSON. A missing origin
// decodes as the none origin.
func (c *Call) UnmarshalJSON(data []byte) error {
	var w callJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	origin := types.None()
	if len(w.Origin) > 0 {
		o, err := types.UnmarshalOrigin(w.Origin)
		if err != nil {
			return err
		}
		origin = o
	}
	*c = Call{Origin: origin, Method: w.Method, Args: w.Args}
	return nil
}

// dispatch runs a decoded call.
type dispatch func(types.Origin) error

// handler decodes the arguments of one method.
type handler func(args json.RawMessage) (dispatch, error)

// validator is implemented by argument types with required fields.
type validator interface {
	validate() error
}

// method adapts a typed engine entry point to a handler.
func method[A any](fn func(types.Origin, A) error) handler {
	return func(raw json.RawMessage) (dispatch, error) {
		var args A
		if len(bytes.TrimSpace(raw)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&args); err != nil {
				return nil, err
			}
		}
		if v, ok := any(&args).(validator); ok {
			if err := v.validate(); err != nil {
				return nil, err
			}
		}
		return func(origin types.Origin) error { return fn(origin, args) }, nil
	}
}

func requireActor(field string, a types.ActorJSON) error {
	if a.Actor == nil {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

type createBountyArgs struct {
	Params   bounty.CreationParams `json:"params"`
	Metadata string                `json:"metadata"`
}

func (a *createBountyArgs) validate() error {
	if a.Params.Creator == nil {
		return fmt.Errorf("params.creator is required")
	}
	return nil
}

type fundBountyArgs struct {
	Funder   types.ActorJSON `json:"funder"`
	BountyID bounty.BountyID `json:"bounty_id"`
	Amount   types.Balance   `json:"amount"`
}

func (a *fundBountyArgs) validate() error { return requireActor("funder", a.Funder) }

type creatorArgs struct {
	Creator  types.ActorJSON `json:"creator"`
	BountyID bounty.BountyID `json:"bounty_id"`
}

func (a *creatorArgs) validate() error { return requireActor("creator", a.Creator) }

type funderArgs struct {
	Funder   types.ActorJSON `json:"funder"`
	BountyID bounty.BountyID `json:"bounty_id"`
}

func (a *funderArgs) validate() error { return requireActor("funder", a.Funder) }

type vetoArgs struct {
	BountyID bounty.BountyID `json:"bounty_id"`
}

type announceArgs struct {
	MemberID       types.MemberID   `json:"member_id"`
	BountyID       bounty.BountyID  `json:"bounty_id"`
	StakingAccount *types.AccountID `json:"staking_account"`
}

type withdrawEntryArgs struct {
	MemberID types.MemberID  `json:"member_id"`
	BountyID bounty.BountyID `json:"bounty_id"`
	EntryID  bounty.EntryID  `json:"entry_id"`
}

type budgetUserArgs struct {
	BudgetType budget.BudgetType `json:"budget_type"`
	UserID     types.MemberID    `json:"user_id"`
}

type budgetAmountArgs struct {
	BudgetType budget.BudgetType `json:"budget_type"`
	Amount     types.Balance     `json:"amount"`
}

type setBudgetArgs struct {
	BudgetType budget.BudgetType `json:"budget_type"`
	Balance    types.Balance     `json:"balance"`
}

type addRecipientArgs struct {
	BudgetType     budget.BudgetType `json:"budget_type"`
	UserID         types.MemberID    `json:"user_id"`
	RewardPerBlock types.Balance     `json:"reward_per_block"`
}

type addPullRecipientArgs struct {
	BudgetType     budget.BudgetType `json:"budget_type"`
	UserID         types.MemberID    `json:"user_id"`
	RewardPerBlock types.Balance     `json:"reward_per_block"`
	Account        types.AccountID   `json:"account"`
}

func (a *addPullRecipientArgs) validate() error {
	if a.Account == "" {
		return fmt.Errorf("account is required")
	}
	return nil
}

type periodicRefillArgs struct {
	BudgetType budget.BudgetType `json:"budget_type"`
	Period     types.BlockNumber `json:"period"`
	Amount     types.Balance     `json:"amount"`
}

type autoPaymentArgs struct {
	BudgetType budget.BudgetType `json:"budget_type"`
	Period     types.BlockNumber `json:"period"`
}

type transferArgs struct {
	To     types.AccountID `json:"to"`
	Amount types.Balance   `json:"amount"`
}

// registerHandlers binds every callable method to its engine.
func (r *Runtime) registerHandlers() {
	b, g := r.bounties, r.budgets
	r.handlers = map[string]handler{
		"bounty.create_bounty": method(func(o types.Origin, a createBountyArgs) error {
			return b.CreateBounty(o, a.Params, []byte(a.Metadata))
		}),
		"bounty.fund_bounty": method(func(o types.Origin, a fundBountyArgs) error {
			return b.FundBounty(o, a.Funder.Actor, a.BountyID, a.Amount)
		}),
		"bounty.cancel_bounty": method(func(o types.Origin, a creatorArgs) error {
			return b.CancelBounty(o, a.Creator.Actor, a.BountyID)
		}),
		"bounty.veto_bounty": method(func(o types.Origin, a vetoArgs) error {
			return b.VetoBounty(o, a.BountyID)
		}),
		"bounty.withdraw_funding": method(func(o types.Origin, a funderArgs) error {
			return b.WithdrawFunding(o, a.Funder.Actor, a.BountyID)
		}),
		"bounty.withdraw_creator_funding": method(func(o types.Origin, a creatorArgs) error {
			return b.WithdrawCreatorFunding(o, a.Creator.Actor, a.BountyID)
		}),
		"bounty.announce_work_entry": method(func(o types.Origin, a announceArgs) error {
			return b.AnnounceWorkEntry(o, a.MemberID, a.BountyID, a.StakingAccount)
		}),
		"bounty.withdraw_work_entry": method(func(o types.Origin, a withdrawEntryArgs) error {
			return b.WithdrawWorkEntry(o, a.MemberID, a.BountyID, a.EntryID)
		}),
		"budget.withdraw_reward": method(func(o types.Origin, a budgetUserArgs) error {
			return g.WithdrawReward(o, a.BudgetType, a.UserID)
		}),
		"budget.set_budget": method(func(o types.Origin, a setBudgetArgs) error {
			return g.SetBudgetCall(o, a.BudgetType, a.Balance)
		}),
		"budget.refill_budget": method(func(o types.Origin, a budgetAmountArgs) error {
			return g.RefillBudgetCall(o, a.BudgetType, a.Amount)
		}),
		"budget.add_recipient": method(func(o types.Origin, a addRecipientArgs) error {
			return g.AddRecipientCall(o, a.BudgetType, a.UserID, a.RewardPerBlock, nil)
		}),
		"budget.add_pull_recipient": method(func(o types.Origin, a addPullRecipientArgs) error {
			return g.AddRecipientCall(o, a.BudgetType, a.UserID, a.RewardPerBlock, &a.Account)
		}),
		"budget.remove_recipient": method(func(o types.Origin, a budgetUserArgs) error {
			return g.RemoveRecipientCall(o, a.BudgetType, a.UserID, false)
		}),
		"budget.remove_recipient_clear_reward": method(func(o types.Origin, a budgetUserArgs) error {
			return g.RemoveRecipientCall(o, a.BudgetType, a.UserID, true)
		}),
		"budget.set_periodic_refill": method(func(o types.Origin, a periodicRefillArgs) error {
			return g.SetPeriodicRefillCall(o, a.BudgetType, a.Period, a.Amount)
		}),
		"budget.set_auto_payment": method(func(o types.Origin, a autoPaymentArgs) error {
			return g.SetAutoPaymentCall(o, a.BudgetType, a.Period)
		}),
		"ledger.transfer": method(func(o types.Origin, a transferArgs) error {
			return r.ledger.TransferCall(o, a.To, a.Amount)
		}),
	}
}

// Methods returns the callable methods in sorted order.
func (r *Runtime) Methods() []string {
	methods := lo.Keys(r.handlers)
	slices.Sort(methods)
	return methods
}
