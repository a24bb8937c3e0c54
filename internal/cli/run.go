package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/netedit/internal/app"
	"github.com/dshills/netedit/internal/network"
	"github.com/dshills/netedit/internal/script"
)

func newRunCommand(opts *options) *cobra.Command {
	var netPath, outPath string

	cmd := &cobra.Command{
		Use:   "run <script.lua>",
		Short: "Run an edit script and print the resulting history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor, err := opts.openEditor(netPath)
			if err != nil {
				return err
			}
			defer editor.Close()

			runner := script.NewRunner(editor,
				script.WithOutput(cmd.OutOrStdout()),
				script.WithLogger(opts.logger),
			)
			if err := runner.RunFile(cmd.Context(), args[0]); err != nil {
				return err
			}

			if err := renderHistory(cmd.OutOrStdout(), editor.History()); err != nil {
				return err
			}
			if outPath == "" {
				return nil
			}
			return saveNetwork(editor.Network(), outPath)
		},
	}

	cmd.Flags().StringVar(&netPath, "net", "", "Network file to load (JSON)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the edited network to this file")
	return cmd
}

func newHistoryCommand(opts *options) *cobra.Command {
	var netPath string

	cmd := &cobra.Command{
		Use:   "history <script.lua>",
		Short: "Run an edit script and print only the undo/redo listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor, err := opts.openEditor(netPath)
			if err != nil {
				return err
			}
			defer editor.Close()

			runner := script.NewRunner(editor,
				script.WithOutput(cmd.ErrOrStderr()),
				script.WithLogger(opts.logger),
			)
			if err := runner.RunFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			return renderHistory(cmd.OutOrStdout(), editor.History())
		},
	}

	cmd.Flags().StringVar(&netPath, "net", "", "Network file to load (JSON)")
	return cmd
}

// openEditor loads the network at path (empty for a new network).
func (o *options) openEditor(path string) (*app.Editor, error) {
	net := network.New()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open network: %w", err)
		}
		defer f.Close()
		if net, err = network.Load(f); err != nil {
			return nil, fmt.Errorf("load network %s: %w", path, err)
		}
	}
	return app.NewEditor(net, o.cfg, o.logger), nil
}

func saveNetwork(net *network.Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := net.Save(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
