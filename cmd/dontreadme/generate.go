package main

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"github.com/dusk-indust/dontreadme/internal/bridge"
	"github.com/dusk-indust/dontreadme/internal/export"
	"github.com/dusk-indust/dontreadme/internal/graph"
	"github.com/dusk-indust/dontreadme/internal/pipeline"
	"github.com/spf13/cobra"
)

func newGenerateCmd(flags *rootFlags) *cobra.Command {
	var only []string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Analyze the project and write artifacts to the output directory",
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
			r, err := e.generate(cmd.Context(), analyses, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printGenerateSummary(cmd.OutOrStdout(), e.outDir, r)
		},
	}
	cmd.Flags().StringSliceVar(&only, "only", nil,
		"run only these analyses: architecture (arch), dependency-graph (deps), api-surface (api), decisions, hotspots, risk-profile (risk)")
	return cmd
}

// run is the outcome of one generate.
type run struct {
	res      *pipeline.Results
	manifest *export.Manifest
	bridged  []bridge.Result
}

// generate runs the pipeline and publishes the results.
func (e *env) generate(ctx context.Context, only []pipeline.Analysis, progress io.Writer) (*run, error) {
	res, err := e.analyze(ctx, only, progress)
	if err != nil {
		return nil, err
	}
	m, err := e.write(res)
	if err != nil {
		return nil, err
	}
	return e.finish(ctx, res, m), nil
}

// write writes the artifacts and manifest.
func (e *env) write(res *pipeline.Results) (*export.Manifest, error) {
	w := export.Writer{
		Root:    e.root,
		OutDir:  e.cfg.OutputDir,
		Version: version,
		Logger:  e.logger,
	}
	return w.Write(res)
}

// finish refreshes the graph index and the assistant instruction files once
// the artifacts are on disk. Failures here are logged, not returned.
func (e *env) finish(ctx context.Context, res *pipeline.Results, m *export.Manifest) *run {
	e.writeIndex(ctx, res)
	r := &run{res: res, manifest: m}
	if e.bridge {
		bridged, err := bridge.Sync(e.root, e.outDir, e.logger)
		if err != nil {
			e.logger.Warn("updating instruction files failed", "err", err)
		}
		r.bridged = bridged
	}
	return r
}

func (e *env) writeIndex(ctx context.Context, res *pipeline.Results) {
	if !res.Ran[pipeline.AnalysisDependencyGraph] {
		return
	}
	dbPath := filepath.Join(e.outDir, graph.IndexDir)
	stats, err := graph.WriteIndex(ctx, dbPath, res.IndexInput())
	switch {
	case errors.Is(err, graph.ErrPersistenceUnavailable):
		e.logger.Debug("graph index not written", "err", err)
	case err != nil:
		e.logger.Warn("writing graph index failed", "path", dbPath, "err", err)
	default:
		e.logger.Debug("graph index written", "path", dbPath,
			"files", stats.FileCount, "components", stats.ComponentCount, "edges", stats.EdgeCount)
	}
}
