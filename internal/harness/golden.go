package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/treasury/internal/ir"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Session      string       `json:"session"`
	Head         uint64       `json:"head"`
	Trace        []TraceEvent `json:"trace"`
}

// Canonical returns the canonical JSON of the snapshot.
func (s TraceSnapshot) Canonical() ([]byte, error) {
	return ir.Canonicalize(s)
}

// Snapshot builds the golden form of result.
func Snapshot(scenario *Scenario, result *Result) TraceSnapshot {
	session := scenario.Session
	if session == "" {
		session = DefaultSession
	}
	return TraceSnapshot{
		ScenarioName: scenario.Name,
		Session:      session,
		Head:         result.Head,
		Trace:        result.Trace,
	}
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against the golden file
// of scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenario, result).Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)
	return nil
}
