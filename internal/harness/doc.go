// Package harness runs YAML scenarios against a fresh runtime.
//
// A scenario declares a genesis, blocks of calls with their expected
// outcomes, and assertions on the chain after the last block.
//
// # Scenario Format
//
//	name: bounty_funding
//	description: "Two funders reach the maximum amount"
//	session: bounty-funding
//	genesis:
//	  accounts:
//	    - {id: alice, balance: 1000}
//	  members:
//	    - {id: 1, controller: alice}
//	blocks:
//	  - calls:
//	      - origin: signed:alice
//	        method: bounty.create_bounty
//	        args: {params: {...}, metadata: "fix the bridge"}
//	        expect:
//	          result: ok
//	          events: [bounty.BountyCreated]
//	  - number: 5
//	    calls:
//	      - origin: root
//	        method: ledger.mint
//	        expect: {rejected: E_UNKNOWN_CALL}
//	assertions:
//	  - type: bounty
//	    bounty: 1
//	    expect: {stage: Funding, escrow: 10}
//	  - type: final_state
//	    table: calls
//	    where: {block: 1, idx: 0}
//	    expect: {result: ok}
//
// Each block is sealed after its calls unless it sets seal: false. A block
// with a number first finalizes the blocks before it.
//
// # Assertion Types
//
//   - event_emitted: some call emitted the event with a matching payload
//   - event_order: events appear in the given order
//   - event_count: an event was emitted exactly N times
//   - account, budget, recipient, bounty: subset match on the runtime view
//   - final_state: exactly one row of the recorded log matches
//
// # Determinism
//
// Scenarios run with a fixed session id and an in-memory SQLite log, so
// traces are identical across runs and can be compared with golden files.
package harness
