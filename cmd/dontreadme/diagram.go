package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/dusk-indust/dontreadme/internal/architecture"
	"github.com/dusk-indust/dontreadme/internal/export"
	"github.com/dusk-indust/dontreadme/internal/graph"
	"github.com/dusk-indust/dontreadme/internal/pipeline"
	"github.com/spf13/cobra"
)

func newDiagramCmd(flags *rootFlags) *cobra.Command {
	var files bool
	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Print a Mermaid diagram of the generated architecture",
		Long: "Print a Mermaid diagram built from the artifacts in the output directory. " +
			"By default it shows components and their dependencies; --files shows individual file imports grouped by component.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			var arch architecture.Architecture
			if err := loadArtifact(e.outDir, pipeline.AnalysisArchitecture, &arch); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !files {
				_, err := fmt.Fprint(w, export.ArchitectureMermaid(arch))
				return err
			}

			var g graph.DependencyGraph
			if err := loadArtifact(e.outDir, pipeline.AnalysisDependencyGraph, &g); err != nil {
				return err
			}
			store := graph.NewMemStore()
			defer store.Close()
			ctx := cmd.Context()
			if _, err := graph.Index(ctx, store, graph.IndexInput{Graph: g, Architecture: arch}); err != nil {
				return err
			}
			out, err := export.GraphMermaid(ctx, store)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(w, out)
			return err
		},
	}
	cmd.Flags().BoolVar(&files, "files", false, "diagram file-level imports instead of components")
	return cmd
}

// loadArtifact reads one generated artifact, pointing at generate when it
// does not exist yet.
func loadArtifact(dir string, name pipeline.Analysis, v any) error {
	err := export.Load(dir, name, v)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no %s artifact in %s: run 'dontreadme generate' first", name, dir)
	}
	return err
}
