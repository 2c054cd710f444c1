package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/dusk-indust/dontreadme/internal/bridge"
	"github.com/dusk-indust/dontreadme/internal/export"
	"github.com/dusk-indust/dontreadme/internal/history"
	"github.com/spf13/cobra"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	var force, mcp bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the output directory with a first full set of artifacts",
		Long: "Run every analysis and write the output directory for the first time. " +
			"Refuses to run when the output directory exists unless --force is given. " +
			"If writing fails, a newly created output directory is removed again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			if _, err := os.Stat(e.outDir); err == nil && !force {
				return fmt.Errorf("%s already exists: use --force to reinitialize", e.outDir)
			}
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if !history.NewGitClient(e.root, e.cfg.History.Timeout.Std()).Available(ctx) {
				e.logger.Warn("not a git repository, decisions and hotspots will be skipped")
			}
			res, err := e.analyze(ctx, nil, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if res.Files.Len() == 0 {
				return fmt.Errorf("no source files found under %s", e.root)
			}

			var m *export.Manifest
			err = withRollback(e.outDir, e.logger, func() error {
				var err error
				m, err = e.write(res)
				return err
			})
			if err != nil {
				return err
			}
			r := e.finish(ctx, res, m)
			if err := printGenerateSummary(w, e.outDir, r); err != nil {
				return err
			}

			if mcp {
				action, err := bridge.RegisterMCP(e.root, force)
				if err != nil {
					return err
				}
				if action == bridge.ActionUnchanged {
					fmt.Fprintf(w, "%s already lists the dontreadme server (use --force to replace it)\n", bridge.MCPConfigFile)
				} else {
					fmt.Fprintf(w, "MCP server entry %s in %s\n", action, bridge.MCPConfigFile)
				}
			}

			fmt.Fprintf(w, "\nNext: review %s, then run 'dontreadme generate' after changes or 'dontreadme watch' while you work.\n", e.outDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "reinitialize an existing output directory")
	cmd.Flags().BoolVar(&mcp, "mcp", false, "also register the MCP server in "+bridge.MCPConfigFile)
	return cmd
}

// withRollback runs fn. When fn fails and dir did not exist beforehand, dir
// is removed so a failed first run leaves nothing behind.
func withRollback(dir string, logger *slog.Logger, fn func() error) error {
	_, statErr := os.Stat(dir)
	existed := !errors.Is(statErr, fs.ErrNotExist)

	err := fn()
	if err == nil || existed {
		return err
	}
	if rmErr := os.RemoveAll(dir); rmErr != nil {
		logger.Warn("removing partial output failed", "dir", dir, "err", rmErr)
	} else {
		logger.Info("rolled back partial output", "dir", dir)
	}
	return err
}
