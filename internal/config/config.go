// Package config loads genesis documents.
//
// A genesis is written in YAML, unified with the embedded CUE schema that
// supplies defaults and constraints, and decoded into a runtime.Genesis.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/treasury/internal/runtime"
	"github.com/roach88/treasury/internal/types"
)

//go:embed schema.cue
var schemaCUE string

// Error is a genesis document that does not satisfy the schema.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads and validates the genesis document at path.
func Load(path string) (runtime.Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runtime.Genesis{}, fmt.Errorf("read genesis: %w", err)
	}
	return Parse(data)
}

// Parse validates a YAML (or JSON) genesis document.
func Parse(data []byte) (runtime.Genesis, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return runtime.Genesis{}, fmt.Errorf("parse genesis: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return Decode(doc)
}

// Decode validates an already parsed document, such as the genesis section
// of a scenario.
func Decode(doc any) (runtime.Genesis, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return runtime.Genesis{}, fmt.Errorf("compile genesis schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Genesis"))

	v := def.Unify(ctx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return runtime.Genesis{}, formatCUEError(err)
	}

	var g runtime.Genesis
	if err := v.Decode(&g); err != nil {
		return runtime.Genesis{}, formatCUEError(err)
	}
	if err := check(g); err != nil {
		return runtime.Genesis{}, err
	}
	return g, nil
}

// Default returns an empty genesis with default parameters.
func Default() runtime.Genesis {
	g, err := Decode(map[string]any{})
	if err != nil {
		panic(fmt.Sprintf("default genesis: %v", err))
	}
	return g
}

// check enforces what the schema cannot express: unique ids.
func check(g runtime.Genesis) error {
	accounts := map[types.AccountID]bool{}
	for i, a := range g.Accounts {
		if accounts[a.ID] {
			return &Error{Field: fmt.Sprintf("accounts[%d].id", i), Message: fmt.Sprintf("duplicate account %q", a.ID)}
		}
		accounts[a.ID] = true
	}
	members := map[types.MemberID]bool{}
	for i, m := range g.Members {
		if members[m.ID] {
			return &Error{Field: fmt.Sprintf("members[%d].id", i), Message: fmt.Sprintf("duplicate member %d", m.ID)}
		}
		members[m.ID] = true
	}
	budgets := map[string]bool{}
	for i, b := range g.Budgets {
		if budgets[string(b.Type)] {
			return &Error{Field: fmt.Sprintf("budgets[%d].type", i), Message: fmt.Sprintf("duplicate budget %q", b.Type)}
		}
		budgets[string(b.Type)] = true
		if len(b.Recipients) > g.Params.MaxRewardRecipients {
			return &Error{Field: fmt.Sprintf("budgets[%d].recipients", i), Message: fmt.Sprintf("%d recipients exceed max_reward_recipients %d", len(b.Recipients), g.Params.MaxRewardRecipients)}
		}
	}
	return nil
}

// formatCUEError extracts the field path and position of the first CUE error.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}

	first := errs[0]
	e := &Error{
		Field:   strings.Join(first.Path(), "."),
		Message: first.Error(),
	}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
