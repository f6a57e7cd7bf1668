package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/roach88/treasury/internal/api"
	"github.com/roach88/treasury/internal/config"
	"github.com/roach88/treasury/internal/metrics"
	"github.com/roach88/treasury/internal/runtime"
	"github.com/roach88/treasury/internal/store"
)

// DefaultBlockSchedule seals a block every six seconds.
const DefaultBlockSchedule = "@every 6s"

// NewNodeCommand creates the node command.
func NewNodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Run a dev node",
		Long: `Run a dev node: the runtime loop recording into a SQLite log, a
block producer sealing blocks on a cron schedule, the HTTP API and the
Prometheus endpoint.

A new log is bound to the --genesis document. A log that already holds a
chain is replayed and the node continues after its last call.

Examples:
  treasury node --genesis ./genesis.yaml --db ./node.db
  treasury node --db ./node.db --listen :8080 --metrics-listen :9090
  TREASURY_BLOCK_SCHEDULE="@every 2s" treasury node --db ./node.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runNode(ctx, rootOpts)
		},
	}

	cmd.Flags().String("db", "", "path to SQLite database (required)")
	cmd.Flags().String("genesis", "", "genesis document for a new log")
	cmd.Flags().String("listen", ":8080", "HTTP API address")
	cmd.Flags().String("metrics-listen", ":9090", "Prometheus address (empty disables it)")
	cmd.Flags().String("block-schedule", DefaultBlockSchedule, "cron schedule of block production")

	return cmd
}

// node is a runtime with its log, indicators, API and block producer.
type node struct {
	rt       *runtime.Runtime
	store    *store.Store
	registry *prometheus.Registry
	api      *api.Server
	producer *cron.Cron
	logger   *slog.Logger
}

// newNode opens the log at db and builds or resumes its chain.
func newNode(ctx context.Context, db, genesisPath, schedule string, logger *slog.Logger) (*node, error) {
	st, err := store.Open(db)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	n := &node{store: st, registry: prometheus.NewRegistry(), logger: logger}
	n.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := n.openChain(ctx, genesisPath); err != nil {
		st.Close()
		return nil, err
	}

	n.api = api.New(n.rt, st, api.WithLogger(logger))
	n.producer = cron.New()
	if _, err := n.producer.AddFunc(schedule, func() { n.seal(ctx) }); err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("invalid block schedule %q", schedule), err)
	}
	return n, nil
}

func (n *node) openChain(ctx context.Context, genesisPath string) error {
	opts := []runtime.Option{
		runtime.WithRecorder(n.store),
		runtime.WithObserver(metrics.New(n.registry)),
		runtime.WithLogger(n.logger),
	}

	_, _, err := n.store.ReadGenesis(ctx)
	switch {
	case errors.Is(err, store.ErrNoGenesis):
		if genesisPath == "" {
			return NewExitError(ExitCommandError, "--genesis is required for a new log")
		}
		genesis, err := config.Load(genesisPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load genesis", err)
		}
		if n.rt, err = runtime.New(ctx, genesis, opts...); err != nil {
			return WrapExitError(ExitCommandError, "failed to build genesis state", err)
		}
		n.logger.Info("chain created", "genesis_hash", n.rt.GenesisHash(), "block", n.rt.CurrentBlock())
	case err != nil:
		return WrapExitError(ExitCommandError, "failed to read genesis", err)
	default:
		if genesisPath != "" {
			n.logger.Warn("log already bound to a genesis, ignoring --genesis", "genesis", genesisPath)
		}
		rt, report, err := runtime.Resume(ctx, n.store, opts...)
		if err != nil {
			if runtime.IsReplayDivergedError(err) {
				return WrapExitError(ExitFailure, fmt.Sprintf("log diverged on replay (%d divergence(s))", len(report.Divergences)), err)
			}
			return WrapExitError(ExitCommandError, "failed to resume chain", err)
		}
		n.rt = rt
	}
	return nil
}

// seal finalizes the current block through the runtime queue.
func (n *node) seal(ctx context.Context) {
	rec, err := n.rt.Seal(ctx)
	if err != nil {
		if !errors.Is(err, runtime.ErrStopped) && ctx.Err() == nil {
			n.logger.Error("block production failed", "error", err)
		}
		return
	}
	n.logger.Debug("block sealed", "block", rec.Number, "calls", rec.Calls, "state_root", rec.StateRoot)
}

// run serves until ctx is done or a server fails.
func (n *node) run(ctx context.Context, listen, metricsListen string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)
	go func() { errCh <- n.rt.Run(ctx) }()
	go func() { errCh <- n.api.Serve(ctx, listen) }()
	servers := 2
	if metricsListen != "" {
		servers++
		go func() { errCh <- metrics.Serve(ctx, metricsListen, n.registry, n.logger) }()
	}

	n.producer.Start()
	n.logger.Info("node started", "listen", listen, "metrics", metricsListen, "block", n.rt.CurrentBlock())

	var first error
	for range servers {
		err := <-errCh
		if err != nil && !errors.Is(err, context.Canceled) && first == nil {
			first = err
		}
		cancel()
	}
	<-n.producer.Stop().Done()
	n.logger.Info("node stopped", "block", n.rt.CurrentBlock())
	return first
}

func (n *node) close() {
	if err := n.store.Close(); err != nil {
		n.logger.Error("error closing database", "error", err)
	}
}

func runNode(ctx context.Context, opts *RootOptions) error {
	db, err := opts.requireSetting("db")
	if err != nil {
		return err
	}
	n, err := newNode(ctx, db, opts.setting("genesis"), opts.setting("block-schedule"), opts.Logger())
	if err != nil {
		return err
	}
	defer n.close()

	if err := n.run(ctx, opts.setting("listen"), opts.setting("metrics-listen")); err != nil {
		return WrapExitError(ExitFailure, "node error", err)
	}
	return nil
}
