package types

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
)

// Balance is an amount of the native currency.
type Balance uint64

// BlockNumber is a position on the block counter.
type BlockNumber uint64

// AccountID identifies a ledger account.
type AccountID string

// MemberID identifies a registered member.
type MemberID uint64

// MaxBalance is the largest representable balance.
const MaxBalance = Balance(math.MaxUint64)

// SaturatingAdd returns a+b, clamped to MaxBalance.
func (b Balance) SaturatingAdd(o Balance) Balance {
	sum, carry := bits.Add64(uint64(b), uint64(o), 0)
	if carry != 0 {
		return MaxBalance
	}
	return Balance(sum)
}

// SaturatingSub returns b-o, clamped to zero.
func (b Balance) SaturatingSub(o Balance) Balance {
	if o > b {
		return 0
	}
	return b - o
}

// SaturatingMul returns b*o, clamped to MaxBalance.
func (b Balance) SaturatingMul(o uint64) Balance {
	hi, lo := bits.Mul64(uint64(b), o)
	if hi != 0 {
		return MaxBalance
	}
	return Balance(lo)
}

// MulDiv returns floor(a*b/c) computed with a 128-bit intermediate.
// It returns 0 when c is zero and MaxBalance when the quotient does not fit.
func MulDiv(a, b, c uint64) uint64 {
	if c == 0 {
		return 0
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return math.MaxUint64
	}
	quo, _ := bits.Div64(hi, lo, c)
	return quo
}

// Min returns the smaller balance.
func Min(a, b Balance) Balance {
	if a < b {
		return a
	}
	return b
}

// SaturatingAdd returns n+d, clamped to the largest block number.
func (n BlockNumber) SaturatingAdd(d BlockNumber) BlockNumber {
	sum, carry := bits.Add64(uint64(n), uint64(d), 0)
	if carry != 0 {
		return BlockNumber(math.MaxUint64)
	}
	return BlockNumber(sum)
}

// Since returns the number of blocks elapsed from then to n, or zero if then is later.
func (n BlockNumber) Since(then BlockNumber) BlockNumber {
	if then > n {
		return 0
	}
	return n - then
}

func (m MemberID) String() string {
	return strconv.FormatUint(uint64(m), 10)
}

// ModuleAccount derives the account owned by an engine entity, such as the
// escrow of a bounty. The derivation is stable across nodes and never
// collides with user accounts, which cannot contain '/'.
func ModuleAccount(module string, id uint64) AccountID {
	return AccountID(fmt.Sprintf("modl/%s/%d", module, id))
}
