// Package export writes analysis results as JSON artifacts under the output
// directory, tracks them in a manifest, and checks them against it.
package export

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/dontreadme/internal/architecture"
	"github.com/dusk-indust/dontreadme/internal/extract"
	"github.com/dusk-indust/dontreadme/internal/graph"
	"github.com/dusk-indust/dontreadme/internal/history"
	"github.com/dusk-indust/dontreadme/internal/pipeline"
	"github.com/dusk-indust/dontreadme/internal/risk"
)

// Artifact describes one JSON file produced by an analysis.
type Artifact struct {
	Name     pipeline.Analysis
	Path     string // slash path relative to the output directory
	Analyzer string

	newValue func() any
}

// Artifacts lists every artifact in manifest order.
var Artifacts = []Artifact{
	{pipeline.AnalysisArchitecture, "architecture.json", "architecture", func() any { return new(architecture.Architecture) }},
	{pipeline.AnalysisDependencyGraph, "dependency-graph.json", "dependency-graph", func() any { return new(graph.DependencyGraph) }},
	{pipeline.AnalysisAPISurface, "api-surface.json", "api-surface", func() any { return new(extract.APISurface) }},
	{pipeline.AnalysisDecisions, "decisions/index.json", "decisions", func() any { return new(history.Decisions) }},
	{pipeline.AnalysisHotspots, "hotspots.json", "hotspots", func() any { return new(history.Hotspots) }},
	{pipeline.AnalysisRisk, "risk-profile.json", "risk-profile", func() any { return new(risk.Profile) }},
}

// DiagramFile is the Mermaid rendering of the architecture. It is written
// beside the artifacts but not tracked in the manifest.
const DiagramFile = "architecture.mmd"

// Lookup returns the artifact produced by analysis name.
func Lookup(name pipeline.Analysis) (Artifact, bool) {
	for _, a := range Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// Encode renders v as stable JSON: struct field order, two-space indent,
// trailing newline.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash returns the first 12 hex digits of the sha256 of b.
func Hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])[:12]
}

// decodeStrict decodes data into the typed value for a, rejecting unknown
// fields and trailing content.
func decodeStrict(a Artifact, data []byte) error {
	return decodeInto(data, a.newValue())
}

func decodeInto(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

// Load strictly decodes the artifact of analysis name from dir into v.
// A missing file returns an error wrapping os.ErrNotExist.
func Load(dir string, name pipeline.Analysis, v any) error {
	a, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown artifact %q", name)
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(a.Path)))
	if err != nil {
		return fmt.Errorf("read %s: %w", a.Path, err)
	}
	if err := decodeInto(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", a.Path, err)
	}
	return nil
}
