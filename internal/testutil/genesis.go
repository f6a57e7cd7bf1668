package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/roach88/treasury/internal/config"
	"github.com/roach88/treasury/internal/runtime"
)

// GenesisBuilder assembles a genesis document the way a genesis file is
// written, so builds go through schema defaults and validation.
type GenesisBuilder struct {
	params   map[string]any
	accounts []map[string]any
	members  []map[string]any
	budgets  []map[string]any
	start    uint64
}

// NewGenesis starts an empty genesis at block 1.
func NewGenesis() *GenesisBuilder {
	return &GenesisBuilder{params: map[string]any{}}
}

// StartBlock sets the first block.
func (b *GenesisBuilder) StartBlock(n uint64) *GenesisBuilder {
	b.start = n
	return b
}

// Param overrides one runtime parameter, e.g. "max_calls_per_block".
func (b *GenesisBuilder) Param(name string, value uint64) *GenesisBuilder {
	b.params[name] = value
	return b
}

// Account endows an account.
func (b *GenesisBuilder) Account(id string, balance uint64) *GenesisBuilder {
	b.accounts = append(b.accounts, map[string]any{"id": id, "balance": balance})
	return b
}

// Member registers a member controlled by controller.
func (b *GenesisBuilder) Member(id uint64, controller string) *GenesisBuilder {
	b.members = append(b.members, map[string]any{"id": id, "controller": controller})
	return b
}

// Budget adds a budget without recipients or schedules.
func (b *GenesisBuilder) Budget(budgetType string, balance uint64) *GenesisBuilder {
	b.budgets = append(b.budgets, map[string]any{"type": budgetType, "balance": balance})
	return b
}

// Refill schedules a periodic refill of the last added budget.
func (b *GenesisBuilder) Refill(period, amount uint64) *GenesisBuilder {
	b.last()["refill"] = map[string]any{"period": period, "amount": amount}
	return b
}

// PullRecipient adds a recipient paid into account to the last added budget.
func (b *GenesisBuilder) PullRecipient(user, rewardPerBlock uint64, account string) *GenesisBuilder {
	last := b.last()
	recipients, _ := last["recipients"].([]map[string]any)
	last["recipients"] = append(recipients, map[string]any{
		"user_id":          user,
		"reward_per_block": rewardPerBlock,
		"account":          account,
	})
	return b
}

func (b *GenesisBuilder) last() map[string]any {
	if len(b.budgets) == 0 {
		panic("testutil: no budget to configure")
	}
	return b.budgets[len(b.budgets)-1]
}

// Document returns the genesis document.
func (b *GenesisBuilder) Document() map[string]any {
	doc := map[string]any{"params": b.params}
	if b.start != 0 {
		doc["start_block"] = b.start
	}
	if len(b.accounts) > 0 {
		doc["accounts"] = b.accounts
	}
	if len(b.members) > 0 {
		doc["members"] = b.members
	}
	if len(b.budgets) > 0 {
		doc["budgets"] = b.budgets
	}
	return doc
}

// Build validates the document and returns the genesis.
func (b *GenesisBuilder) Build(t testing.TB) runtime.Genesis {
	t.Helper()
	g, err := config.Decode(b.Document())
	if err != nil {
		t.Fatalf("testutil: invalid genesis: %v", err)
	}
	return g
}

// WriteFile writes the document as YAML into a temp dir and returns its path.
func (b *GenesisBuilder) WriteFile(t testing.TB) string {
	t.Helper()
	data, err := yaml.Marshal(b.Document())
	if err != nil {
		t.Fatalf("testutil: encode genesis: %v", err)
	}
	return WriteFile(t, "genesis.yaml", data)
}

// WriteFile writes data to name in a fresh temp dir and returns the path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("testutil: write %s: %v", name, err)
	}
	return path
}
