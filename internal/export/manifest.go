package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Manifest identity.
const (
	ManifestFile    = "manifest.json"
	ManifestVersion = "1"
	Generator       = "dontreadme"
)

var (
	// ErrNoManifest is returned when the output directory has no manifest.
	ErrNoManifest = errors.New("no manifest found")

	errTrailingData = errors.New("unexpected data after JSON value")
)

// ManifestArtifact records one written artifact.
type ManifestArtifact struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	Hash          string `json:"hash"`
	GeneratedAt   string `json:"generatedAt"`
	Analyzer      string `json:"analyzer"`
	Deterministic bool   `json:"deterministic"`
}

// Manifest indexes the artifacts of the last generate run.
type Manifest struct {
	Version          string             `json:"version"`
	Generator        string             `json:"generator"`
	GeneratorVersion string             `json:"generatorVersion"`
	GeneratedAt      string             `json:"generatedAt"`
	CodebaseRoot     string             `json:"codebaseRoot"`
	Artifacts        []ManifestArtifact `json:"artifacts"`
}

// Entry returns the manifest record for an artifact name.
func (m *Manifest) Entry(name string) (ManifestArtifact, bool) {
	if m == nil {
		return ManifestArtifact{}, false
	}
	for _, a := range m.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return ManifestArtifact{}, false
}

// LoadManifest reads dir/manifest.json. A missing file yields ErrNoManifest.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoManifest)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := decodeInto(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
