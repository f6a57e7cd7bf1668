package types

// Event is a typed notification emitted by a successful call.
type Event interface {
	// Module is the emitting engine ("bounty", "budget", "ledger").
	Module() string
	// Name is the event variant, e.g. "BountyCreated".
	Name() string
}

// EventSink collects events emitted during a call.
type EventSink interface {
	Deposit(Event)
}

// BlockSource reports the current block.
type BlockSource interface {
	CurrentBlock() BlockNumber
}

// EventBuffer is an EventSink that keeps events in emission order.
type EventBuffer struct {
	events []Event
}

func (b *EventBuffer) Deposit(e Event) {
	b.events = append(b.events, e)
}

// Drain returns the buffered events and clears the buffer.
func (b *EventBuffer) Drain() []Event {
	out := b.events
	b.events = nil
	return out
}

// Events returns the buffered events without clearing them.
func (b *EventBuffer) Events() []Event {
	return b.events
}

// FixedBlock is a BlockSource pinned to one block, settable by tests and the runtime.
type FixedBlock struct {
	Block BlockNumber
}

func (f *FixedBlock) CurrentBlock() BlockNumber { return f.Block }
