package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dusk-indust/dontreadme/internal/export"
	"github.com/spf13/cobra"
)

func newValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the output directory against the artifact schemas and the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			results, err := export.Validate(e.outDir)
			if errors.Is(err, export.ErrNoManifest) {
				return fmt.Errorf("%w in %s: run 'dontreadme generate' first", export.ErrNoManifest, e.outDir)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			invalid := 0
			for _, r := range results {
				if r.Valid() {
					fmt.Fprintf(w, "%s %s\n", green("ok"), r.Path)
					continue
				}
				invalid++
				fmt.Fprintf(w, "%s %s: %s\n", red("FAIL"), r.Path, strings.Join(r.Errors, "; "))
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d files invalid", invalid, len(results))
			}
			fmt.Fprintf(w, "\nAll %d files valid.\n", len(results))
			return nil
		},
	}
}
