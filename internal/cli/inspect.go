package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/treasury/internal/ir"
	"github.com/roach88/treasury/internal/store"
)

// Record kinds shown by inspect.
const (
	inspectBlocks = "blocks"
	inspectCalls  = "calls"
	inspectEvents = "events"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect blocks|calls|events",
		Short: "Show the records of a call log",
		Long: `Show the finalized blocks, applied calls or emitted events of a call
log as a table, or as JSON with --format json.

Examples:
  treasury inspect blocks --db ./node.db
  treasury inspect calls --db ./node.db --block 4
  treasury inspect calls --db ./node.db --method bounty.fund_bounty
  treasury inspect events --db ./node.db --module budget --name RewardWithdrawal`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{inspectBlocks, inspectCalls, inspectEvents},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	cmd.Flags().String("db", "", "path to SQLite database (required)")
	cmd.Flags().String("block", "", "only records of this block")
	cmd.Flags().String("method", "", "only calls of this method")
	cmd.Flags().String("result", "", "only calls with this result")
	cmd.Flags().String("module", "", "only events of this module")
	cmd.Flags().String("name", "", "only events with this name")

	return cmd
}

func runInspect(opts *RootOptions, kind string, cmd *cobra.Command) error {
	db, err := opts.requireSetting("db")
	if err != nil {
		return err
	}
	var block *uint64
	if s := opts.setting("block"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --block", err)
		}
		block = &n
	}

	st, err := store.Open(db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	out := opts.formatter(cmd)

	switch kind {
	case inspectBlocks:
		blocks, err := st.ReadBlocks(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read blocks", err)
		}
		if block != nil {
			blocks = lo.Filter(blocks, func(b ir.BlockRecord, _ int) bool { return b.Number == *block })
		}
		return out.Render(blocks, func(w io.Writer) error {
			renderBlocks(w, blocks)
			return nil
		})

	case inspectCalls:
		calls, err := st.ReadCalls(ctx, store.CallFilter{
			Block:  block,
			Method: opts.setting("method"),
			Result: opts.setting("result"),
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read calls", err)
		}
		return out.Render(calls, func(w io.Writer) error {
			renderCalls(w, calls)
			return nil
		})

	default:
		events, err := st.ReadEvents(ctx, store.EventFilter{
			Block:  block,
			Module: opts.setting("module"),
			Name:   opts.setting("name"),
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}
		return out.Render(events, func(w io.Writer) error {
			return renderEvents(w, events)
		})
	}
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func renderBlocks(w io.Writer, blocks []ir.BlockRecord) {
	t := newTable(w, table.Row{"Block", "Calls", "Events", "State Root"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	for _, b := range blocks {
		t.AppendRow(table.Row{b.Number, b.Calls, b.Events, b.StateRoot})
	}
	t.AppendFooter(table.Row{"", lo.SumBy(blocks, func(b ir.BlockRecord) int { return b.Calls }), lo.SumBy(blocks, func(b ir.BlockRecord) int { return b.Events }), fmt.Sprintf("%d block(s)", len(blocks))})
	t.Render()
}

func renderCalls(w io.Writer, calls []ir.CallRecord) {
	t := newTable(w, table.Row{"Block", "Index", "Seq", "Origin", "Method", "Result"})
	for _, c := range calls {
		t.AppendRow(table.Row{c.Block, c.Index, c.Seq, originLabel(c.Origin), c.Method, c.Result})
	}
	t.Render()
}

func renderEvents(w io.Writer, events []ir.EventRecord) error {
	t := newTable(w, table.Row{"Block", "Index", "Event", "Payload"})
	for _, e := range events {
		payload, err := ir.MarshalCanonical(e.Payload)
		if err != nil {
			return fmt.Errorf("encode event %s: %w", e.Hash, err)
		}
		t.AppendRow(table.Row{e.Block, e.Index, e.Module + "." + e.Name, string(payload)})
	}
	t.Render()
	return nil
}

// originLabel prints a recorded origin the way scenarios write it.
func originLabel(origin ir.IRObject) string {
	kind, _ := origin["kind"].(ir.IRString)
	if account, ok := origin["account"].(ir.IRString); ok {
		return string(kind) + ":" + string(account)
	}
	return string(kind)
}
