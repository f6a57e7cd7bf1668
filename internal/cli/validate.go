package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/treasury/internal/config"
	"github.com/roach88/treasury/internal/runtime"
)

// GenesisSummary describes a valid genesis document.
type GenesisSummary struct {
	Path        string `json:"path"`
	GenesisHash string `json:"genesis_hash"`
	StartBlock  uint64 `json:"start_block"`
	Accounts    int    `json:"accounts"`
	Members     int    `json:"members"`
	Budgets     int    `json:"budgets"`
	StateRoot   string `json:"state_root"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <genesis.yaml>",
		Short: "Validate a genesis document",
		Long: `Validate a genesis document against the genesis schema and build
its initial state.

Exit codes:
  0 - Genesis is valid
  1 - Genesis is invalid
  2 - Command error (file not found, etc.)

Examples:
  treasury validate ./genesis.yaml
  treasury validate ./genesis.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	genesis, err := config.Load(path)
	if err != nil {
		var cfgErr *config.Error
		if !errors.As(err, &cfgErr) {
			return WrapExitError(ExitCommandError, "failed to load genesis", err)
		}
		if err := out.Error("E_INVALID_GENESIS", err.Error(), map[string]string{"field": cfgErr.Field}); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, "invalid genesis", err)
	}

	rt, err := runtime.New(cmd.Context(), genesis, runtime.WithLogger(opts.Logger()))
	if err != nil {
		if err := out.Error("E_INVALID_GENESIS", err.Error(), nil); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, "invalid genesis", err)
	}
	root, err := rt.StateRoot()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compute state root", err)
	}

	summary := GenesisSummary{
		Path:        path,
		GenesisHash: rt.GenesisHash(),
		StartBlock:  uint64(genesis.StartBlock),
		Accounts:    len(genesis.Accounts),
		Members:     len(genesis.Members),
		Budgets:     len(genesis.Budgets),
		StateRoot:   root,
	}
	return out.Render(summary, func(w io.Writer) error {
		fmt.Fprintf(w, "✓ %s is valid\n", path)
		fmt.Fprintf(w, "  Genesis hash: %s\n", summary.GenesisHash)
		fmt.Fprintf(w, "  Start block:  %d\n", summary.StartBlock)
		fmt.Fprintf(w, "  %d account(s), %d member(s), %d budget(s)\n", summary.Accounts, summary.Members, summary.Budgets)
		return nil
	})
}
