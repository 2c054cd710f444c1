package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dusk-indust/dontreadme/internal/config"
	"github.com/dusk-indust/dontreadme/internal/export"
	"github.com/dusk-indust/dontreadme/internal/pipeline"
	"github.com/spf13/cobra"
)

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	projectRoot string
	outputDir   string
	scanner     string
	verbose     bool
	logFormat   string
	noBridge    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "dontreadme",
		Short:         "Generate machine-readable context artifacts for a JavaScript or TypeScript codebase.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.projectRoot, "project-root", ".", "path to the project to analyze")
	pf.StringVar(&flags.outputDir, "output-dir", "", "artifact directory, relative to the project root (default from config: .dontreadme)")
	pf.StringVar(&flags.scanner, "scanner", "", "source scanner: regex or treesitter (default from config)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")
	pf.BoolVar(&flags.noBridge, "no-bridge", false, "do not add context pointers to AI assistant instruction files")

	root.AddCommand(
		newInitCmd(flags),
		newGenerateCmd(flags),
		newDiffCmd(flags),
		newValidateCmd(flags),
		newStatusCmd(flags),
		newWatchCmd(flags),
		newDiagramCmd(flags),
		newImpactCmd(flags),
		newServeMCPCmd(flags),
		newBridgeCmd(flags),
		newVersionCmd(),
	)
	return root
}

// env is the resolved configuration of one command invocation.
type env struct {
	root   string
	cfg    *config.ProjectConfig
	outDir string
	logger *slog.Logger
	// bridge keeps assistant instruction files pointing at the artifacts.
	bridge bool
}

// setup loads the project config, applies flag overrides, and builds the
// logger on the command's stderr.
func (f *rootFlags) setup(cmd *cobra.Command) (*env, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), f.verbose, f.logFormat)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(f.projectRoot)
	if err != nil {
		return nil, err
	}
	if f.outputDir != "" {
		cfg.OutputDir = f.outputDir
	}
	if f.scanner != "" {
		cfg.Scanner = f.scanner
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &env{
		root:   f.projectRoot,
		cfg:    cfg,
		outDir: export.ResolveDir(f.projectRoot, cfg.OutputDir),
		logger: logger,
		bridge: !f.noBridge,
	}, nil
}

func newLogger(w io.Writer, verbose bool, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
}

// analyze runs the pipeline for e. Progress lines go to progress when it
// is non-nil.
func (e *env) analyze(ctx context.Context, only []pipeline.Analysis, progress io.Writer) (*pipeline.Results, error) {
	opts, err := pipeline.FromConfig(e.root, e.cfg)
	if err != nil {
		return nil, err
	}
	opts.Only = only
	opts.Logger = e.logger
	if progress != nil {
		opts.OnProgress = progressPrinter(progress, e.root)
	}
	return pipeline.Run(ctx, opts)
}

// progressPrinter prints a header per stage and one line per finished
// analysis. Events arrive from concurrent analyses.
func progressPrinter(w io.Writer, root string) func(pipeline.ProgressEvent) {
	var (
		mu    sync.Mutex
		stage pipeline.Stage
	)
	return func(ev pipeline.ProgressEvent) {
		switch ev.Status {
		case pipeline.ProgressComplete, pipeline.ProgressFailed, pipeline.ProgressSkipped:
		default:
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if ev.Stage != stage {
			stage = ev.Stage
			fmt.Fprintln(w, pipeline.FormatStageHeader(root, stage))
		}
		fmt.Fprintln(w, pipeline.FormatProgress(ev))
	}
}
