// Package cli provides the command-line interface for netedit.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/netedit/internal/config"
	"github.com/dshills/netedit/internal/logging"
)

// options holds state shared by all subcommands.
type options struct {
	configPath string
	logLevel   string

	cfg       *config.Config
	logger    *logging.Logger
	logCloser io.Closer
}

// NewRootCommand creates the root command for netedit.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, &options{})
}

func newRootCommand(version string, opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "netedit",
		Short: "Scriptable network editing with grouped undo/redo",
		Long: `netedit applies Lua edit scripts to a traffic network file.
Edits made inside net.begin()/net.finish() are recorded as a single
undoable step; failed scripts have their open groups aborted.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return opts.teardown()
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (.toml or .yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	root.AddCommand(
		newRunCommand(opts),
		newHistoryCommand(opts),
		newVersionCommand(version),
	)
	// Cobra skips PersistentPostRunE when RunE fails, so every subcommand
	// releases the log file itself.
	for _, cmd := range root.Commands() {
		if cmd.RunE != nil {
			cmd.RunE = opts.withTeardown(cmd.RunE)
		}
	}
	return root
}

func (o *options) withTeardown(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, o.teardown())
		}()
		return run(cmd, args)
	}
}

// setup loads configuration and builds the logger.
func (o *options) setup(stderr io.Writer) error {
	cfg, err := config.NewLoader().Load(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.logLevel != "" {
		if !logging.ValidLevel(o.logLevel) {
			return fmt.Errorf("invalid --log-level %q", o.logLevel)
		}
		cfg.Log.Level = o.logLevel
	}
	o.cfg = cfg

	lc := cfg.LoggerConfig()
	if cfg.Log.File != "" {
		logger, closer, err := logging.OpenFile(cfg.Log.File, lc)
		if err != nil {
			return err
		}
		o.logger, o.logCloser = logger, closer
	} else {
		lc.Output = stderr
		o.logger = logging.New(lc)
	}
	logging.SetDefault(o.logger)
	return nil
}

func (o *options) teardown() error {
	if o.logCloser == nil {
		return nil
	}
	logging.SetDefault(logging.New(logging.DefaultConfig()))
	err := o.logCloser.Close()
	o.logCloser = nil
	return err
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "netedit %s\n", version)
			return err
		},
	}
}
