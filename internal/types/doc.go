// Package types holds the primitives shared by the treasury engines.
//
// Balances and block numbers are unsigned integers; every arithmetic
// helper here saturates instead of wrapping so a computed reward or share
// can never silently overflow. Origin and Actor are sealed sum types: only
// the variants declared in this package satisfy them, and callers switch
// over them exhaustively.
package types
