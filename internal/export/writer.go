package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dusk-indust/dontreadme/internal/pipeline"
)

// Writer writes pipeline results into an output directory.
type Writer struct {
	Root    string
	OutDir  string // relative to Root unless absolute
	Version string

	// Now stamps generatedAt. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// WriteAll writes the selected artifacts of res under root/outDir and
// updates the manifest.
func WriteAll(root, outDir string, res *pipeline.Results, version string) (*Manifest, error) {
	w := Writer{Root: root, OutDir: outDir, Version: version}
	return w.Write(res)
}

// Dir returns the resolved output directory.
func (w Writer) Dir() string {
	return ResolveDir(w.Root, w.OutDir)
}

// ResolveDir joins a relative outDir onto root.
func ResolveDir(root, outDir string) string {
	if filepath.IsAbs(outDir) {
		return outDir
	}
	return filepath.Join(root, outDir)
}

// Write encodes and writes every artifact in res.Selected (all artifacts
// when nothing was selected), the architecture diagram when architecture is
// among them, and the manifest. Entries for artifacts not written in this
// run are kept from the previous manifest. An artifact whose hash did not
// change keeps its previous generatedAt.
func (w Writer) Write(res *pipeline.Results) (*Manifest, error) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	stamp := now().UTC().Format(time.RFC3339)
	dir := w.Dir()

	entries := make(map[string]ManifestArtifact, len(Artifacts))
	prev, err := LoadManifest(dir)
	switch {
	case err == nil:
		for _, e := range prev.Artifacts {
			if _, ok := Lookup(pipeline.Analysis(e.Name)); ok {
				entries[e.Name] = e
			}
		}
	case !errors.Is(err, ErrNoManifest):
		logger.Warn("replacing unreadable manifest", "dir", dir, "err", err)
	}

	selected := res.Selected
	if len(selected) == 0 {
		selected = pipeline.Analyses
	}
	for _, name := range selected {
		a, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown artifact %q", name)
		}
		data, err := Encode(res.Artifact(name))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		hash := Hash(data)
		generatedAt := stamp
		if old, ok := entries[string(name)]; ok && old.Hash == hash {
			generatedAt = old.GeneratedAt
		}
		if err := writeFile(filepath.Join(dir, filepath.FromSlash(a.Path)), data); err != nil {
			return nil, err
		}
		logger.Debug("artifact written", "artifact", name, "hash", hash)
		entries[string(name)] = ManifestArtifact{
			Name:          string(name),
			Path:          a.Path,
			Hash:          hash,
			GeneratedAt:   generatedAt,
			Analyzer:      a.Analyzer,
			Deterministic: true,
		}

		if name == pipeline.AnalysisArchitecture {
			diagram := ArchitectureMermaid(res.Architecture)
			if err := writeFile(filepath.Join(dir, DiagramFile), []byte(diagram)); err != nil {
				return nil, err
			}
		}
	}

	root, err := filepath.Abs(w.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	m := &Manifest{
		Version:          ManifestVersion,
		Generator:        Generator,
		GeneratorVersion: w.Version,
		GeneratedAt:      stamp,
		CodebaseRoot:     filepath.ToSlash(root),
		Artifacts:        []ManifestArtifact{},
	}
	for _, a := range Artifacts {
		if e, ok := entries[string(a.Name)]; ok {
			m.Artifacts = append(m.Artifacts, e)
		}
	}
	data, err := Encode(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeFile(filepath.Join(dir, ManifestFile), data); err != nil {
		return nil, err
	}
	return m, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
