package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/treasury/internal/harness"
	"github.com/roach88/treasury/internal/store"
)

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <scenario.yaml>",
		Short: "Execute a scenario and print its receipts",
		Long: `Execute a scenario file against a fresh runtime built from the
scenario genesis, check its expectations and assertions, and print the
receipt of every call.

With --db the chain is recorded into that SQLite log, which can then be
replayed or inspected.

Exit codes:
  0 - Scenario passed
  1 - Scenario failed
  2 - Command error (invalid scenario, store not writable, etc.)

Examples:
  treasury exec ./scenarios/bounty.yaml
  treasury exec ./scenarios/bounty.yaml --db ./bounty.db
  treasury exec ./scenarios/bounty.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(rootOpts, args[0], cmd)
		},
	}

	cmd.Flags().String("db", "", "record the chain into this SQLite log")

	return cmd
}

func runExec(opts *RootOptions, path string, cmd *cobra.Command) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	runOpts := []harness.Option{harness.WithLogger(opts.Logger())}
	if db := opts.setting("db"); db != "" {
		st, err := store.Open(db)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		runOpts = append(runOpts, harness.WithStore(st))
	}

	result, err := harness.Run(cmd.Context(), scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to execute scenario", err)
	}

	out := opts.formatter(cmd)
	text := func(w io.Writer) error {
		writeTrace(w, result.Trace)
		fmt.Fprintln(w)
		if result.Pass {
			fmt.Fprintf(w, "✓ %s passed (head %d, state root %s)\n", scenario.Name, result.Head, result.StateRoot)
			return nil
		}
		fmt.Fprintf(w, "✗ %s failed\n", scenario.Name)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(strings.TrimRight(e, "\n"), "\n", "\n  "))
		}
		return nil
	}

	if result.Pass {
		return out.Render(result, text)
	}
	if err := out.Fail("E_SCENARIO_FAILED", fmt.Sprintf("scenario %s failed", scenario.Name), result, text); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
}

func writeTrace(w io.Writer, trace []harness.TraceEvent) {
	for _, ev := range trace {
		switch ev.Type {
		case harness.TraceBlock:
			fmt.Fprintf(w, "── block %d sealed (%d call(s))\n", ev.Block, ev.Calls)
		case harness.TraceReject:
			fmt.Fprintf(w, "   [%d.-] %s %s rejected: %s\n", ev.Block, ev.Origin, ev.Method, ev.Result)
		default:
			fmt.Fprintf(w, "   [%d.%d] %s %s -> %s\n", ev.Block, ev.Index, ev.Origin, ev.Method, ev.Result)
			for _, e := range ev.Events {
				fmt.Fprintf(w, "         %s\n", e.Name)
			}
		}
	}
}
