// Package bounty implements the bounty lifecycle and its funding escrow.
//
// A bounty is created by the council or a member with a cherry and optional
// creator funding, both moved into an escrow account derived from the bounty
// id. Funders top it up while it is in the funding stage. Once funded, members
// announce work entries by reserving the entrant stake; withdrawing an entry
// before the work period ends forfeits a share of the stake proportional to
// the elapsed part of the period. Failed and canceled bounties return every
// contribution plus a pro-rata share of the cherry, and the record is removed
// once the escrow is empty.
//
// Stages are derived from the stored milestone and the current block by
// Bounty.Stage; the actions each stage allows live in one table in stage.go.
// Every call validates fully before its first write.
package bounty
