// Package membership is the member registry the runtime resolves member
// origins against.
package membership

import (
	"fmt"
	"slices"

	"github.com/roach88/treasury/internal/state"
	"github.com/roach88/treasury/internal/types"
)

// Member is a registered member and the account that controls it.
type Member struct {
	ID         types.MemberID  `json:"id"`
	Controller types.AccountID `json:"controller"`
	Handle     string          `json:"handle,omitempty"`
	// StakingAccounts are extra accounts the member may lock stake on.
	StakingAccounts []types.AccountID `json:"staking_accounts,omitempty"`
}

// Registry maps member ids to their controller accounts.
type Registry struct {
	members *state.Map[types.MemberID, Member]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{members: state.NewMap[types.MemberID, Member]()}
}

// Register adds a member. Member ids are unique.
func (r *Registry) Register(m Member) error {
	if r.members.Contains(m.ID) {
		return fmt.Errorf("member %s already registered", m.ID)
	}
	if m.Controller == "" {
		return fmt.Errorf("member %s has no controller account", m.ID)
	}
	r.members.Insert(m.ID, m)
	return nil
}

// Get returns the member with id.
func (r *Registry) Get(id types.MemberID) (Member, bool) {
	return r.members.Get(id)
}

// IsMemberAccount reports whether account controls member.
func (r *Registry) IsMemberAccount(member types.MemberID, account types.AccountID) bool {
	m, ok := r.members.Get(member)
	return ok && m.Controller == account
}

// IsStakingAccount reports whether member may stake from account: its
// controller or one of its bound staking accounts.
func (r *Registry) IsStakingAccount(member types.MemberID, account types.AccountID) bool {
	m, ok := r.members.Get(member)
	if !ok {
		return false
	}
	return m.Controller == account || slices.Contains(m.StakingAccounts, account)
}

// Members exposes the registry storage for snapshots.
func (r *Registry) Members() *state.Map[types.MemberID, Member] {
	return r.members
}
