package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dusk-indust/dontreadme/internal/graph"
	"github.com/spf13/cobra"
)

func newImpactCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "impact <file>...",
		Short: "Show which files are affected by changing the given files",
		Long: "Assess the blast radius of a change using the graph index written by generate. " +
			"Paths are relative to the project root.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			dbPath := filepath.Join(e.outDir, graph.IndexDir)
			if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("no graph index at %s: run 'dontreadme generate' first", dbPath)
			}
			ctx := cmd.Context()
			store, err := graph.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			changed := make([]string, len(args))
			for i, a := range args {
				changed[i] = filepath.ToSlash(filepath.Clean(a))
			}
			res, err := store.AssessImpact(ctx, changed)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Directly affected (%d):\n", len(res.DirectlyAffected))
			for _, f := range res.DirectlyAffected {
				fmt.Fprintf(w, "  %s\n", f)
			}
			fmt.Fprintf(w, "Transitively affected (%d):\n", len(res.TransitivelyAffected))
			for _, f := range res.TransitivelyAffected {
				fmt.Fprintf(w, "  %s\n", f)
			}
			fmt.Fprintf(w, "Blast radius: %.0f%% of indexed files\n", res.RiskScore*100)
			return nil
		},
	}
}
