package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that override flags:
// --metrics-listen is read from TREASURY_METRICS_LISTEN.
const EnvPrefix = "TREASURY"

// RootOptions holds global flags for all commands and the settings resolved
// for the running command.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	settings *viper.Viper
	logger   *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the treasury CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "treasury",
		Short: "Bounty escrow and spending budgets on a deterministic runtime",
		Long: `Treasury runs bounty escrow and spending budget engines on a
single-writer block runtime that records every call into a SQLite log.

Settings are read from flags, then TREASURY_* environment variables, then
the optional --config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "settings file (yaml, json or toml)")

	cmd.AddCommand(NewNodeCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// resolve binds the flags of cmd to a fresh settings instance and installs
// the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	v, err := newSettings(o.ConfigFile, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load settings", err)
	}
	o.settings = v
	o.Format = v.GetString("format")
	o.Verbose = v.GetBool("verbose")

	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	o.logger = newLogger(cmd.ErrOrStderr(), o.Verbose)
	return nil
}

// newSettings layers flags over TREASURY_* environment variables over the
// config file at path.
func newSettings(path string, cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	var bindErr error
	bind := func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	return v, bindErr
}

// setting returns the resolved value of a string flag of the running
// command.
func (o *RootOptions) setting(key string) string {
	if o.settings == nil {
		return ""
	}
	return o.settings.GetString(key)
}

// Logger returns the command logger. It discards output until the command
// settings are resolved.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter returns the output formatter of cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// requireSetting fails with a command error when key is unset.
func (o *RootOptions) requireSetting(key string) (string, error) {
	value := o.setting(key)
	if value == "" {
		return "", NewExitError(ExitCommandError, fmt.Sprintf("--%s is required (or set %s_%s)", key, EnvPrefix, envKey(key)))
	}
	return value, nil
}

func envKey(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}
