// Package auth resolves call origins into verified actors.
//
// Both engines authorize the same way: the council acts through the root
// origin, and a member acts through a signed origin whose account controls
// the claimed member id.
package auth

import (
	"fmt"

	"github.com/roach88/treasury/internal/types"
)

const module = "auth"

var (
	// ErrBadOrigin is returned when the origin kind does not fit the call.
	ErrBadOrigin = types.NewDispatchError(module, "BadOrigin", "bad origin")

	// ErrNotMemberAccount is returned when a signed account does not control the claimed member.
	ErrNotMemberAccount = types.NewDispatchError(module, "NotMemberAccount", "account does not control the member")
)

// MembershipResolver answers whether an account controls a member.
type MembershipResolver interface {
	IsMemberAccount(member types.MemberID, account types.AccountID) bool
}

// EnsureRoot fails unless origin is root.
func EnsureRoot(origin types.Origin) error {
	if _, ok := origin.(types.RootOrigin); !ok {
		return fmt.Errorf("%w: expected root, got %s", ErrBadOrigin, describe(origin))
	}
	return nil
}

// EnsureSigned returns the signing account or fails.
func EnsureSigned(origin types.Origin) (types.AccountID, error) {
	signed, ok := origin.(types.SignedOrigin)
	if !ok {
		return "", fmt.Errorf("%w: expected signed, got %s", ErrBadOrigin, describe(origin))
	}
	return signed.Account, nil
}

// EnsureMember verifies that origin is signed by an account controlling member
// and returns that account.
func EnsureMember(origin types.Origin, members MembershipResolver, member types.MemberID) (types.AccountID, error) {
	account, err := EnsureSigned(origin)
	if err != nil {
		return "", err
	}
	if !members.IsMemberAccount(member, account) {
		return "", fmt.Errorf("%w: account %s, member %s", ErrNotMemberAccount, account, member)
	}
	return account, nil
}

// EnsureActor verifies that origin may act as actor. Root maps to Council and
// a controlling signed account maps to Member; any other pairing fails with
// ErrBadOrigin or ErrNotMemberAccount.
func EnsureActor(origin types.Origin, members MembershipResolver, actor types.Actor) error {
	switch a := actor.(type) {
	case types.CouncilActor:
		return EnsureRoot(origin)
	case types.MemberActor:
		_, err := EnsureMember(origin, members, a.ID)
		return err
	default:
		return fmt.Errorf("%w: unknown actor %T", ErrBadOrigin, actor)
	}
}

func describe(origin types.Origin) string {
	if origin == nil {
		return "nil"
	}
	return origin.String()
}
