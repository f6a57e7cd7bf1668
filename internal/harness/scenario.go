package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/treasury/internal/types"
)

// Scenario is a genesis, a sequence of blocks of calls, and assertions on
// the resulting chain.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is the fixed runtime session id. Defaults to DefaultSession.
	Session string `yaml:"session,omitempty"`

	// Genesis is a genesis document, validated like a genesis file.
	Genesis map[string]any `yaml:"genesis"`

	// Blocks are applied in order. Each block is sealed after its calls
	// unless Seal is false.
	Blocks []BlockStep `yaml:"blocks"`

	// Assertions validate the trace and final state.
	Assertions []Assertion `yaml:"assertions"`
}

// DefaultSession is the session id of scenarios that do not set one.
const DefaultSession = "scenario"

// BlockStep is one block of calls.
type BlockStep struct {
	// Number advances the chain to this block before the calls run.
	// Zero means the current block.
	Number uint64 `yaml:"number,omitempty"`

	Calls []CallStep `yaml:"calls"`

	// Seal finalizes the block after its calls. Defaults to true.
	Seal *bool `yaml:"seal,omitempty"`
}

func (b BlockStep) sealed() bool { return b.Seal == nil || *b.Seal }

// CallStep is one call and its expected outcome.
type CallStep struct {
	// Origin is "root", "none" or "signed:<account>".
	Origin string `yaml:"origin"`

	// Method is the call name, e.g. "bounty.fund_bounty".
	Method string `yaml:"method"`

	Args map[string]any `yaml:"args,omitempty"`

	// Expect validates the receipt. Nil expects success.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a call.
type ExpectClause struct {
	// Result is "ok" or a dispatch error such as "bounty.InvalidBountyStage".
	Result string `yaml:"result,omitempty"`

	// Events, when set, is the exact list of events the call emits,
	// written as "module.Name".
	Events []string `yaml:"events,omitempty"`

	// Rejected is a runtime error code such as "E_UNKNOWN_CALL". The call
	// is expected to be refused without entering the chain.
	Rejected string `yaml:"rejected,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Event is "module.Name" (event_emitted, event_count).
	Event string `yaml:"event,omitempty"`

	// Payload is a subset of the event payload (event_emitted).
	Payload map[string]any `yaml:"payload,omitempty"`

	// Events is the expected event order (event_order).
	Events []string `yaml:"events,omitempty"`

	// Count is the expected number of occurrences (event_count).
	Count int `yaml:"count,omitempty"`

	// Account names the account of an account assertion.
	Account string `yaml:"account,omitempty"`

	// Budget names the budget of budget and recipient assertions.
	Budget string `yaml:"budget,omitempty"`

	// User is the member id of a recipient assertion.
	User *uint64 `yaml:"user,omitempty"`

	// Bounty is the id of a bounty assertion.
	Bounty *uint64 `yaml:"bounty,omitempty"`

	// Table, Where and Expect query the recorded log (final_state).
	Table string         `yaml:"table,omitempty"`
	Where map[string]any `yaml:"where,omitempty"`

	// Expect holds expected field values. Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertEventEmitted = "event_emitted"
	AssertEventOrder   = "event_order"
	AssertEventCount   = "event_count"
	AssertAccount      = "account"
	AssertBudget       = "budget"
	AssertRecipient    = "recipient"
	AssertBounty       = "bounty"
	AssertFinalState   = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and structural constraints.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Blocks) == 0 {
		return fmt.Errorf("blocks must contain at least one block")
	}

	var last uint64
	for i, b := range s.Blocks {
		if b.Number != 0 {
			if b.Number < last {
				return fmt.Errorf("blocks[%d]: number %d is before block %d", i, b.Number, last)
			}
			last = b.Number
		}
		for j, c := range b.Calls {
			if err := validateCall(c); err != nil {
				return fmt.Errorf("blocks[%d].calls[%d]: %w", i, j, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, i); err != nil {
			return err
		}
	}
	return nil
}

func validateCall(c CallStep) error {
	if c.Method == "" {
		return fmt.Errorf("method is required")
	}
	if _, err := ParseOrigin(c.Origin); err != nil {
		return err
	}
	if e := c.Expect; e != nil && e.Rejected != "" && (e.Result != "" || len(e.Events) > 0) {
		return fmt.Errorf("rejected calls have no result or events")
	}
	return nil
}

func validateAssertion(a Assertion, index int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventEmitted:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_emitted", index)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	case AssertEventCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertAccount:
		if a.Account == "" {
			return fmt.Errorf("assertions[%d]: account is required for account", index)
		}
	case AssertBudget:
		if a.Budget == "" {
			return fmt.Errorf("assertions[%d]: budget is required for budget", index)
		}
	case AssertRecipient:
		if a.Budget == "" || a.User == nil {
			return fmt.Errorf("assertions[%d]: budget and user are required for recipient", index)
		}
	case AssertBounty:
		if a.Bounty == nil {
			return fmt.Errorf("assertions[%d]: bounty is required for bounty", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	switch a.Type {
	case AssertAccount, AssertBudget, AssertRecipient, AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	}
	return nil
}

// ParseOrigin reads the scenario form of an origin.
func ParseOrigin(s string) (types.Origin, error) {
	kind, account, _ := strings.Cut(s, ":")
	if kind == "signed" && account == "" {
		return nil, fmt.Errorf("origin %q: signed origin requires an account", s)
	}
	if kind != "signed" && account != "" {
		return nil, fmt.Errorf("origin %q: only signed origins name an account", s)
	}
	origin, err := types.ParseOrigin(kind, types.AccountID(account))
	if err != nil {
		return nil, fmt.Errorf("origin %q: %w", s, err)
	}
	return origin, nil
}
