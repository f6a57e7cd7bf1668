package ir

// CallRecord is a dispatched call as persisted in the log. Failed calls are
// recorded too; Result carries their error code.
type CallRecord struct {
	ID      string   `json:"id"`      // Content-addressed hash
	Block   uint64   `json:"block"`   // Block the call was applied in
	Index   int      `json:"index"`   // Position within the block
	Seq     int64    `json:"seq"`     // Logical clock over the whole log
	Session string   `json:"session"` // Runtime session that applied the call; not part of ID
	Origin  IRObject `json:"origin"`  // {"kind": ..., "account": ...}
	Method  string   `json:"method"`  // "bounty.fund_bounty", ...
	Args    IRValue  `json:"args"`
	Result  string   `json:"result"` // "ok" or "module.Code"
	Message string   `json:"message,omitempty"`
}

// EventRecord is an emitted event as persisted in the log.
type EventRecord struct {
	Hash    string   `json:"hash"`
	CallID  string   `json:"call_id,omitempty"` // empty for block finalization
	Block   uint64   `json:"block"`
	Index   int      `json:"index"` // Position within the block
	Module  string   `json:"module"`
	Name    string   `json:"name"`
	Payload IRObject `json:"payload"`
}

// BlockRecord is a finalized block.
type BlockRecord struct {
	Number    uint64 `json:"number"`
	StateRoot string `json:"state_root"`
	Calls     int    `json:"calls"`
	Events    int    `json:"events"`
}

// OK is the Result of a successful call.
const OK = "ok"
