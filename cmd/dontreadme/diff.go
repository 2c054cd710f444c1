package main

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/dontreadme/internal/export"
	"github.com/dusk-indust/dontreadme/internal/pipeline"
	"github.com/spf13/cobra"
)

func newDiffCmd(flags *rootFlags) *cobra.Command {
	var only []string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show which artifacts would change if generate ran now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			analyses, err := pipeline.ParseAnalyses(only)
			if err != nil {
				return err
			}
			m, err := export.LoadManifest(e.outDir)
			if err != nil && !errors.Is(err, export.ErrNoManifest) {
				return err
			}
			res, err := e.analyze(cmd.Context(), analyses, nil)
			if err != nil {
				return err
			}
			entries, err := export.Diff(m, res)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if m == nil {
				fmt.Fprintf(w, "No manifest in %s, every artifact is new.\n", e.outDir)
			}
			counts := map[export.Change]int{}
			for _, d := range entries {
				counts[d.Change]++
				switch d.Change {
				case export.ChangeNew:
					fmt.Fprintf(w, "%s %s\n", green("+"), d.Artifact.Path)
				case export.ChangeChanged:
					fmt.Fprintf(w, "%s %s (%s -> %s)\n", yellow("~"), d.Artifact.Path, d.OldHash, d.NewHash)
				default:
					fmt.Fprintf(w, "  %s\n", faint(d.Artifact.Path))
				}
			}
			fmt.Fprintf(w, "\n%d changed, %d new, %d unchanged\n",
				counts[export.ChangeChanged], counts[export.ChangeNew], counts[export.ChangeUnchanged])
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&only, "only", nil, "compare only these analyses")
	return cmd
}
