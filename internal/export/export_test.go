package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dusk-indust/dontreadme/internal/architecture"
	"github.com/dusk-indust/dontreadme/internal/config"
	"github.com/dusk-indust/dontreadme/internal/graph"
	"github.com/dusk-indust/dontreadme/internal/history"
	"github.com/dusk-indust/dontreadme/internal/pipeline"
	"github.com/dusk-indust/dontreadme/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureRoot = "../../testdata/fixtures/ts_project"

var (
	firstRun  = time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	secondRun = time.Date(2026, 10, 11, 9, 30, 0, 0, time.UTC)
)

const fixtureNumstat = "c2\x00Ann\x002026-10-10T11:00:00Z\n\n40\t0\tsrc/services/user.ts\n\n" +
	"c1\x00Bob\x002026-10-01T09:00:00Z\n\n2\t2\tsrc/auth/session.ts\n"

const fixtureLog = "c2\x00Ann\x002026-10-10T11:00:00Z\x00feat: add user service\n\nsrc/services/user.ts\n\n" +
	"c1\x00Bob\x002026-10-01T09:00:00Z\x00fix: session expiry\n\nsrc/auth/session.ts\n"

// runFixture runs the full pipeline over the TypeScript fixture.
func runFixture(t *testing.T, only ...pipeline.Analysis) *pipeline.Results {
	t.Helper()
	cfg := config.Defaults()
	paths, err := source.Discover(fixtureRoot, cfg.Include, cfg.Exclude)
	require.NoError(t, err)
	res, err := pipeline.Run(context.Background(), pipeline.Options{
		Root:    fixtureRoot,
		Paths:   paths,
		History: history.MemSource{LogOutput: fixtureLog, NumstatOutput: fixtureNumstat},
		Only:    only,
		Now:     firstRun,
	})
	require.NoError(t, err)
	return res
}

func writeAt(t *testing.T, dir string, at time.Time, res *pipeline.Results) *Manifest {
	t.Helper()
	w := Writer{Root: fixtureRoot, OutDir: dir, Version: "1.2.3", Now: func() time.Time { return at }}
	m, err := w.Write(res)
	require.NoError(t, err)
	return m
}

func TestEncode(t *testing.T) {
	got, err := Encode(map[string]any{"b": []int{1}, "a": "<x>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": \"<x>\",\n  \"b\": [\n    1\n  ]\n}\n", string(got))
}

func TestHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc", Hash(nil))
	assert.Len(t, Hash([]byte("x")), 12)
	assert.NotEqual(t, Hash([]byte("x")), Hash([]byte("y")))
}

func TestLookup(t *testing.T) {
	a, ok := Lookup(pipeline.AnalysisDecisions)
	require.True(t, ok)
	assert.Equal(t, "decisions/index.json", a.Path)

	_, ok = Lookup("vibes")
	assert.False(t, ok)
	assert.Len(t, Artifacts, len(pipeline.Analyses))
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	m := writeAt(t, dir, firstRun, runFixture(t))

	assert.Equal(t, ManifestVersion, m.Version)
	assert.Equal(t, Generator, m.Generator)
	assert.Equal(t, "1.2.3", m.GeneratorVersion)
	assert.Equal(t, "2026-10-10T18:00:00Z", m.GeneratedAt)
	assert.True(t, filepath.IsAbs(filepath.FromSlash(m.CodebaseRoot)))
	require.Len(t, m.Artifacts, len(Artifacts))

	for i, a := range Artifacts {
		e := m.Artifacts[i]
		assert.Equal(t, string(a.Name), e.Name)
		assert.Equal(t, a.Path, e.Path)
		assert.True(t, e.Deterministic)
		assert.Equal(t, m.GeneratedAt, e.GeneratedAt)

		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(a.Path)))
		require.NoError(t, err, a.Path)
		assert.Equal(t, Hash(data), e.Hash, a.Path)
		assert.NoError(t, decodeStrict(a, data), a.Path)
	}

	diagram, err := os.ReadFile(filepath.Join(dir, DiagramFile))
	require.NoError(t, err)
	assert.Contains(t, string(diagram), "graph TD\n")

	loaded, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)
}

func TestWrite_RelativeOutDir(t *testing.T) {
	root := t.TempDir()
	m, err := WriteAll(root, ".dontreadme", pipeline.EmptyResults(), "dev")
	require.NoError(t, err)
	assert.Len(t, m.Artifacts, len(Artifacts))
	assert.FileExists(t, filepath.Join(root, ".dontreadme", ManifestFile))
	assert.FileExists(t, filepath.Join(root, ".dontreadme", "decisions", "index.json"))
}

func TestWrite_KeepsGeneratedAtWhenUnchanged(t *testing.T) {
	dir := t.TempDir()
	writeAt(t, dir, firstRun, runFixture(t))

	res := runFixture(t)
	res.Architecture.Entrypoints = append(res.Architecture.Entrypoints, "src/extra.ts")
	m := writeAt(t, dir, secondRun, res)

	assert.Equal(t, "2026-10-11T09:30:00Z", m.GeneratedAt)
	for _, e := range m.Artifacts {
		if e.Name == string(pipeline.AnalysisArchitecture) {
			assert.Equal(t, "2026-10-11T09:30:00Z", e.GeneratedAt)
			continue
		}
		assert.Equal(t, "2026-10-10T18:00:00Z", e.GeneratedAt, e.Name)
	}
}

func TestWrite_OnlyMergesManifest(t *testing.T) {
	dir := t.TempDir()
	full := writeAt(t, dir, firstRun, runFixture(t))

	require.NoError(t, os.Remove(filepath.Join(dir, "hotspots.json")))
	m := writeAt(t, dir, secondRun, runFixture(t, pipeline.AnalysisArchitecture))

	assert.Equal(t, full.Artifacts, m.Artifacts)
	assert.NoFileExists(t, filepath.Join(dir, "hotspots.json"), "only selected artifacts are written")
}

func TestWrite_ReplacesUnreadableManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("{nope"), 0o644))

	m := writeAt(t, dir, firstRun, runFixture(t, pipeline.AnalysisAPISurface))
	require.Len(t, m.Artifacts, 1)
	assert.Equal(t, string(pipeline.AnalysisAPISurface), m.Artifacts[0].Name)
}

func TestLoadManifest_Missing(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	require.ErrorIs(t, err, ErrNoManifest)
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	res := runFixture(t)

	entries, err := Diff(nil, res)
	require.NoError(t, err)
	require.Len(t, entries, len(Artifacts))
	for _, d := range entries {
		assert.Equal(t, ChangeNew, d.Change, d.Artifact.Name)
		assert.Empty(t, d.OldHash)
	}

	m := writeAt(t, dir, firstRun, res)
	entries, err = Diff(m, runFixture(t))
	require.NoError(t, err)
	for _, d := range entries {
		assert.Equal(t, ChangeUnchanged, d.Change, d.Artifact.Name)
	}

	changed := runFixture(t)
	changed.Hotspots = history.EmptyHotspots()
	entries, err = Diff(m, changed)
	require.NoError(t, err)
	for _, d := range entries {
		want := ChangeUnchanged
		if d.Artifact.Name == pipeline.AnalysisHotspots {
			want = ChangeChanged
		}
		assert.Equal(t, want, d.Change, d.Artifact.Name)
	}
}

func TestDiff_OnlySelected(t *testing.T) {
	entries, err := Diff(nil, runFixture(t, pipeline.AnalysisRisk))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, pipeline.AnalysisRisk, entries[0].Artifact.Name)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	writeAt(t, dir, firstRun, runFixture(t))

	results, err := Validate(dir)
	require.NoError(t, err)
	require.Len(t, results, len(Artifacts)+1)
	assert.Equal(t, ManifestFile, results[0].Path)
	for _, r := range results {
		assert.True(t, r.Valid(), "%s: %v", r.Path, r.Errors)
	}
}

func TestValidate_Problems(t *testing.T) {
	dir := t.TempDir()
	writeAt(t, dir, firstRun, runFixture(t))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "hotspots.json"),
		[]byte(`{"hotspots": [], "commitsAnalyzed": 0, "threshold": 0, "mean": 0, "stdDev": 0, "extra": 1}`), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, "risk-profile.json")))

	results, err := Validate(dir)
	require.NoError(t, err)

	byPath := map[string]FileResult{}
	for _, r := range results {
		byPath[r.Path] = r
	}
	assert.True(t, byPath[ManifestFile].Valid())
	assert.True(t, byPath["architecture.json"].Valid())

	hot := byPath["hotspots.json"]
	require.Len(t, hot.Errors, 2)
	assert.Contains(t, hot.Errors[0], "schema")
	assert.Contains(t, hot.Errors[0], `"extra"`)
	assert.Contains(t, hot.Errors[1], "does not match manifest")

	assert.Equal(t, []string{"missing"}, byPath["risk-profile.json"].Errors)
}

func TestValidate_BadManifest(t *testing.T) {
	dir := t.TempDir()
	writeAt(t, dir, firstRun, runFixture(t))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile),
		[]byte(`{"version": "2", "generator": "x", "generatorVersion": "", "generatedAt": "", "codebaseRoot": "", "artifacts": []}`), 0o644))

	results, err := Validate(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{`unsupported version "2"`}, results[0].Errors)
	for _, r := range results[1:] {
		assert.Equal(t, []string{"not listed in manifest"}, r.Errors, r.Path)
	}
}

func TestValidate_NoManifest(t *testing.T) {
	_, err := Validate(t.TempDir())
	require.ErrorIs(t, err, ErrNoManifest)
}

func TestArchitectureMermaid(t *testing.T) {
	a := architecture.Architecture{
		Components: []architecture.Component{{Name: "src.api"}, {Name: "src.db"}},
		Edges: []architecture.Edge{
			{From: "src.api", To: "src.db", Imports: []string{"src/db/client.ts", "src/db/pool.ts"}},
		},
		Layers: []architecture.Layer{
			{Name: "layer-0", Components: []string{"src.db"}, Level: 0},
			{Name: "layer-1", Components: []string{"src.api"}, Level: 1},
		},
	}
	want := "graph TD\n" +
		"  subgraph L0[\"layer-0\"]\n" +
		"    C0[\"src.db\"]\n" +
		"  end\n" +
		"  subgraph L1[\"layer-1\"]\n" +
		"    C1[\"src.api\"]\n" +
		"  end\n" +
		"  C1 -->|2| C0\n"
	assert.Equal(t, want, ArchitectureMermaid(a))
	assert.Equal(t, "graph TD\n", ArchitectureMermaid(architecture.Empty()))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	res := runFixture(t)
	writeAt(t, dir, firstRun, res)

	var g graph.DependencyGraph
	require.NoError(t, Load(dir, pipeline.AnalysisDependencyGraph, &g))
	assert.Equal(t, res.DependencyGraph, g)

	var h history.Hotspots
	err := Load(t.TempDir(), pipeline.AnalysisHotspots, &h)
	require.ErrorIs(t, err, os.ErrNotExist)
}
