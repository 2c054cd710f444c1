package pipeline

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/dusk-indust/dontreadme/internal/config"
	"github.com/dusk-indust/dontreadme/internal/extract"
	"github.com/dusk-indust/dontreadme/internal/history"
	"github.com/dusk-indust/dontreadme/internal/source"
)

// FromConfig builds run options for the project at root: the discovered
// file list, the configured scanner, and git history bounded by the
// configured limits. A relative output directory is kept out of discovery.
func FromConfig(root string, cfg *config.ProjectConfig) (Options, error) {
	exclude := cfg.Exclude
	if cfg.OutputDir != "" && !filepath.IsAbs(cfg.OutputDir) {
		exclude = append(slices.Clone(exclude), filepath.ToSlash(filepath.Clean(cfg.OutputDir))+"/**")
	}
	paths, err := source.Discover(root, cfg.Include, exclude)
	if err != nil {
		return Options{}, fmt.Errorf("discover files: %w", err)
	}
	scanner, err := extract.NewScanner(cfg.Scanner)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Root:         root,
		Paths:        paths,
		Scanner:      scanner,
		History:      history.NewGitClient(root, cfg.History.Timeout.Std()),
		MaxFileSize:  cfg.MaxFileSize,
		LogLimit:     cfg.History.LogLimit,
		NumstatLimit: cfg.History.NumstatLimit,
	}, nil
}
