package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dusk-indust/dontreadme/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Generate, then regenerate whenever source files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			r, err := e.generate(ctx, nil, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := printGenerateSummary(w, e.outDir, r); err != nil {
				return err
			}

			var skip []string
			if !filepath.IsAbs(e.cfg.OutputDir) {
				skip = append(skip, filepath.ToSlash(filepath.Clean(e.cfg.OutputDir)))
			}
			watcher, err := watch.New(watch.Options{
				Root:     e.root,
				Include:  e.cfg.Include,
				Exclude:  e.cfg.Exclude,
				SkipDirs: skip,
				Debounce: e.cfg.Watch.Debounce.Std(),
			}, func(ctx context.Context) error {
				r, err := e.generate(ctx, nil, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Regenerated %d artifacts in %s\n", len(r.res.Completed()), r.res.Duration)
				printBridged(w, r.bridged)
				return nil
			}, e.logger)
			if err != nil {
				return err
			}
			return watcher.Run(ctx)
		},
	}
}
