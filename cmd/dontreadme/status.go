package main

import (
	"fmt"

	"github.com/dusk-indust/dontreadme/internal/status"
	"github.com/spf13/cobra"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report which artifacts exist and whether they match the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			report, err := status.Check(e.outDir)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if report.HasManifest {
				fmt.Fprintf(w, "Output: %s (generated %s)\n\n", report.Dir, report.GeneratedAt)
			} else {
				fmt.Fprintf(w, "Output: %s (no manifest, run 'dontreadme generate')\n\n", report.Dir)
			}

			rows := make([][]string, 0, len(report.Artifacts))
			for _, a := range report.Artifacts {
				generated := a.GeneratedAt
				if generated == "" {
					generated = "-"
				}
				rows = append(rows, []string{string(a.Name), a.Path, stateLabel(a.State), generated})
			}
			if err := renderTable(w, []string{"Artifact", "File", "State", "Generated"}, rows); err != nil {
				return err
			}
			if report.Current() {
				fmt.Fprintln(w, "\nAll artifacts are current.")
			}
			return nil
		},
	}
}

func stateLabel(s status.State) string {
	switch s {
	case status.StatePresent:
		return green(string(s))
	case status.StateMissing:
		return red(string(s))
	default:
		return yellow(string(s))
	}
}
