package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix allows
// a future algorithm migration.
const (
	DomainGenesis = "treasury/genesis/v1"
	DomainCall    = "treasury/call/v1"
	DomainEvent   = "treasury/event/v1"
	DomainState   = "treasury/state/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null separator
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func hashObject(domain string, obj IRObject) (string, error) {
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", err
	}
	return hashWithDomain(domain, canonical), nil
}

// GenesisHash identifies the genesis a log was produced from.
func GenesisHash(genesis IRValue) (string, error) {
	canonical, err := MarshalCanonical(genesis)
	if err != nil {
		return "", fmt.Errorf("GenesisHash: %w", err)
	}
	return hashWithDomain(DomainGenesis, canonical), nil
}

// CallID computes the content-addressed id of a call. The position of the
// call in the log is part of its identity, so replaying the same call in the
// same slot yields the same id.
func CallID(block uint64, index int, origin IRObject, method string, args IRValue) (string, error) {
	id, err := hashObject(DomainCall, IRObject{
		"block":  IRUint(block),
		"index":  IRInt(index),
		"origin": origin,
		"method": IRString(method),
		"args":   args,
	})
	if err != nil {
		return "", fmt.Errorf("CallID: %w", err)
	}
	return id, nil
}

// EventHash computes the content-addressed hash of an event. callID is empty
// for events raised while finalizing a block.
func EventHash(callID string, block uint64, index int, module, name string, payload IRValue) (string, error) {
	hash, err := hashObject(DomainEvent, IRObject{
		"call_id": IRString(callID),
		"block":   IRUint(block),
		"index":   IRInt(index),
		"module":  IRString(module),
		"name":    IRString(name),
		"payload": payload,
	})
	if err != nil {
		return "", fmt.Errorf("EventHash: %w", err)
	}
	return hash, nil
}

// StateRoot computes the commitment to a state snapshot at the end of block.
func StateRoot(block uint64, snapshot IRValue) (string, error) {
	root, err := hashObject(DomainState, IRObject{
		"block": IRUint(block),
		"state": snapshot,
	})
	if err != nil {
		return "", fmt.Errorf("StateRoot: %w", err)
	}
	return root, nil
}

// MustCallID is like CallID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCallID(block uint64, index int, origin IRObject, method string, args IRValue) string {
	id, err := CallID(block, index, origin, method, args)
	if err != nil {
		panic(err)
	}
	return id
}
