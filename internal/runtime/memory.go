package runtime

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/treasury/internal/ir"
)

// Log is the complete persisted history of a chain.
type Log struct {
	GenesisHash string
	Genesis     []byte
	Calls       []ir.CallRecord
	Events      []ir.EventRecord
	Blocks      []ir.BlockRecord
}

// Source reads a persisted log. store.Store implements it.
type Source interface {
	ReadLog(ctx context.Context) (Log, error)
}

// MemoryLog is an in-memory Recorder and Source.
type MemoryLog struct {
	mu  sync.Mutex
	log Log
}

// NewMemoryLog returns an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// WriteGenesis implements Recorder.
func (m *MemoryLog) WriteGenesis(_ context.Context, hash string, genesis []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.log.GenesisHash != "" && m.log.GenesisHash != hash {
		return fmt.Errorf("log bound to genesis %s, got %s", m.log.GenesisHash, hash)
	}
	m.log.GenesisHash = hash
	m.log.Genesis = slices.Clone(genesis)
	return nil
}

// WriteCall implements Recorder.
func (m *MemoryLog) WriteCall(_ context.Context, call ir.CallRecord, events []ir.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log.Calls = append(m.log.Calls, call)
	m.log.Events = append(m.log.Events, events...)
	return nil
}

// WriteBlock implements Recorder.
func (m *MemoryLog) WriteBlock(_ context.Context, block ir.BlockRecord, events []ir.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log.Blocks = append(m.log.Blocks, block)
	m.log.Events = append(m.log.Events, events...)
	return nil
}

// ReadLog implements Source.
func (m *MemoryLog) ReadLog(context.Context) (Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Log{
		GenesisHash: m.log.GenesisHash,
		Genesis:     slices.Clone(m.log.Genesis),
		Calls:       slices.Clone(m.log.Calls),
		Events:      slices.Clone(m.log.Events),
		Blocks:      slices.Clone(m.log.Blocks),
	}, nil
}
