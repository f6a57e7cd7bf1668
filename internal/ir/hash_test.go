package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashWithDomainSeparator(t *testing.T) {
	sum := sha256.Sum256([]byte("d\x00data"))
	assert.Equal(t, hex.EncodeToString(sum[:]), hashWithDomain("d", []byte("data")))
	assert.NotEqual(t, hashWithDomain("d", []byte("data")), hashWithDomain("dd", []byte("ata")))
}

func TestCallIDStable(t *testing.T) {
	origin := IRObject{"kind": IRString("signed"), "account": IRString("alice")}
	args := IRObject{"bounty_id": IRUint(1), "amount": IRUint(100)}

	a := MustCallID(3, 0, origin, "bounty.fund_bounty", args)
	b := MustCallID(3, 0, origin, "bounty.fund_bounty", IRObject{"amount": IRUint(100), "bounty_id": IRUint(1)})
	assert.Equal(t, a, b, "key order does not affect identity")
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, MustCallID(3, 1, origin, "bounty.fund_bounty", args), "slot is part of identity")
	assert.NotEqual(t, a, MustCallID(4, 0, origin, "bounty.fund_bounty", args))
}

func TestEventHashAndStateRootDomains(t *testing.T) {
	payload := IRObject{"bounty_id": IRUint(1)}
	ev, err := EventHash("", 1, 0, "bounty", "BountyVetoed", payload)
	require.NoError(t, err)
	root, err := StateRoot(1, payload)
	require.NoError(t, err)
	assert.NotEqual(t, ev, root)

	again, err := EventHash("", 1, 0, "bounty", "BountyVetoed", payload)
	require.NoError(t, err)
	assert.Equal(t, ev, again)

	g, err := GenesisHash(payload)
	require.NoError(t, err)
	assert.Len(t, g, 64)
}

func TestCallIDRejectsNilArgs(t *testing.T) {
	_, err := CallID(1, 0, IRObject{}, "x", nil)
	assert.Error(t, err)
}
