package main

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/dontreadme/internal/bridge"
	"github.com/spf13/cobra"
)

func newBridgeCmd(flags *rootFlags) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Add, refresh or remove context pointers in AI assistant instruction files",
		Long: "Keep a delimited block pointing at the output directory in the assistant instruction files " +
			"that exist in the project (" + strings.Join(instructionFiles(), ", ") + "). " +
			"generate and watch do this automatically unless --no-bridge is set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if remove {
				removed, err := bridge.Unsync(e.root)
				for _, f := range removed {
					fmt.Fprintf(w, "Context pointer removed from %s (%s)\n", f.Path, f.Tool)
				}
				if err != nil {
					return err
				}
				if len(removed) == 0 {
					fmt.Fprintln(w, "No context pointers found.")
				}
				return nil
			}

			results, err := bridge.Sync(e.root, e.outDir, e.logger)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(w, "No assistant instruction files found.")
				return nil
			}
			printBridged(w, results)
			current := true
			for _, r := range results {
				current = current && r.Action == bridge.ActionUnchanged
			}
			if current {
				fmt.Fprintln(w, "Context pointers are current.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "remove the context pointers instead")
	return cmd
}

func instructionFiles() []string {
	var out []string
	for _, t := range bridge.Targets {
		out = append(out, t.Files...)
	}
	return out
}
