package architecture

import (
	"testing"

	"github.com/dusk-indust/dontreadme/internal/extract"
	"github.com/dusk-indust/dontreadme/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *source.Set {
	return source.NewSet(
		source.File{Path: "src/index.ts", Text: `import { createUser } from './services/user';
import { h } from './utils/helpers';
export function main() {}
`},
		source.File{Path: "src/services/user.ts", Text: `import { h } from '../utils/helpers';
import { x } from '../utils/deep/x';
import { other } from './other';
export function createUser() {}
`},
		source.File{Path: "src/services/other.ts", Text: "export const other = 1\n"},
		source.File{Path: "src/utils/helpers.ts", Text: "export const h = 1\n"},
		source.File{Path: "src/config/env.ts", Text: "import lodash from 'lodash'\nexport const env = {}\n"},
	)
}

func TestAnalyze_Components(t *testing.T) {
	arch := Analyze(fixture(), extract.RegexScanner{})

	require.Len(t, arch.Components, 4)
	var names []string
	types := map[string]ComponentType{}
	for _, c := range arch.Components {
		names = append(names, c.Name)
		types[c.Name] = c.Type
	}
	assert.Equal(t, []string{"src", "src.config", "src.services", "src.utils"}, names)
	assert.Equal(t, map[string]ComponentType{
		"src":          TypeEntrypoint,
		"src.config":   TypeConfig,
		"src.services": TypeService,
		"src.utils":    TypeUtility,
	}, types)

	svc, ok := arch.Component("src.services")
	require.True(t, ok)
	assert.Equal(t, "src/services", svc.Path)
	assert.Equal(t, []string{"src/services/other.ts", "src/services/user.ts"}, svc.Files)
	assert.Equal(t, []string{"createUser", "other"}, svc.Exports)
	assert.Equal(t, []string{"src/services/other", "src/utils/deep/x", "src/utils/helpers"}, svc.Imports)
}

func TestAnalyze_Edges(t *testing.T) {
	arch := Analyze(fixture(), extract.RegexScanner{})

	assert.Equal(t, []Edge{
		{From: "src", To: "src.services", Imports: []string{"src/services/user"}},
		{From: "src", To: "src.utils", Imports: []string{"src/utils/helpers"}},
		{From: "src.services", To: "src.utils", Imports: []string{"src/utils/deep/x", "src/utils/helpers"}},
	}, arch.Edges, "deep import walks up to src/utils; same-directory import is not an edge")
}

func TestAnalyze_LayersAndEntrypoints(t *testing.T) {
	arch := Analyze(fixture(), extract.RegexScanner{})

	assert.Equal(t, []Layer{
		{Name: "layer-0", Components: []string{"src.config", "src.utils"}, Level: 0},
		{Name: "layer-1", Components: []string{"src.services"}, Level: 1},
		{Name: "layer-2", Components: []string{"src"}, Level: 2},
	}, arch.Layers)
	assert.Equal(t, []string{"src", "src.config"}, arch.Entrypoints)
	assert.Equal(t, 2, arch.LayerOf("src"))
	assert.Equal(t, -1, arch.LayerOf("nope"))
}

func TestAnalyze_BarrelImports(t *testing.T) {
	files := source.NewSet(
		source.File{Path: "src/index.ts", Text: "import { svc } from './services'\n"},
		source.File{Path: "src/app/main.ts", Text: "import { svc } from '../services'\nimport { v } from '../lib'\n"},
		source.File{Path: "src/services/index.ts", Text: "export const svc = 1\n"},
		// a file named like the directory takes precedence, as it does for
		// module resolution
		source.File{Path: "src/lib.ts", Text: "export const v = 1\n"},
		source.File{Path: "src/lib/inner.ts", Text: "export const w = 1\n"},
	)
	arch := Analyze(files, extract.RegexScanner{})

	assert.Equal(t, []Edge{
		{From: "src", To: "src.services", Imports: []string{"src/services"}},
		{From: "src.app", To: "src", Imports: []string{"src/lib"}},
		{From: "src.app", To: "src.services", Imports: []string{"src/services"}},
	}, arch.Edges)
}

func TestAnalyze_RootComponent(t *testing.T) {
	arch := Analyze(source.NewSet(
		source.File{Path: "index.ts", Text: "import { a } from './lib/a'\n"},
		source.File{Path: "lib/a.ts", Text: "export const a = 1\n"},
	), extract.RegexScanner{})

	require.Len(t, arch.Components, 2)
	assert.Equal(t, "root", arch.Components[0].Name)
	assert.Equal(t, ".", arch.Components[0].Path)
	assert.Equal(t, TypeEntrypoint, arch.Components[0].Type)
	assert.Equal(t, []Edge{{From: "root", To: "lib", Imports: []string{"lib/a"}}}, arch.Edges)
}

func TestAnalyze_Empty(t *testing.T) {
	arch := Analyze(source.NewSet(), extract.RegexScanner{})
	assert.Equal(t, Empty(), arch)
}

func TestLayers_EveryComponentPlacedOnce(t *testing.T) {
	comps := []Component{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	edges := []Edge{
		{From: "a", To: "b"},
		{From: "b", To: "a"},
		{From: "c", To: "a"},
	}

	layers := Layers(comps, edges)
	assert.Equal(t, []Layer{
		{Name: "layer-0", Components: []string{"d"}, Level: 0},
		{Name: "layer-1", Components: []string{"a", "b", "c"}, Level: 1},
	}, layers, "the cyclic remainder becomes the final layer")

	seen := map[string]int{}
	for _, l := range layers {
		for _, c := range l.Components {
			seen[c]++
		}
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1, "d": 1}, seen)
}

func TestLayers_LevelIsLongestChain(t *testing.T) {
	comps := []Component{{Name: "app"}, {Name: "api"}, {Name: "db"}, {Name: "log"}}
	edges := []Edge{
		{From: "app", To: "api"},
		{From: "app", To: "log"},
		{From: "api", To: "db"},
		{From: "db", To: "log"},
	}

	got := map[string]int{}
	for _, l := range Layers(comps, edges) {
		for _, c := range l.Components {
			got[c] = l.Level
		}
	}
	assert.Equal(t, map[string]int{"log": 0, "db": 1, "api": 2, "app": 3}, got)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		dir   string
		files []string
		want  ComponentType
	}{
		{"src/__tests__", nil, TypeTest},
		{"src/config/test", nil, TypeTest},
		{"src/environment", nil, TypeConfig},
		{"src/lib", nil, TypeUtility},
		{"src/providers", nil, TypeService},
		{"src/ui", nil, TypeComponent},
		{"src/Views", nil, TypeComponent},
		{"src", []string{"src/index.ts"}, TypeEntrypoint},
		{".", []string{"index.js"}, TypeEntrypoint},
		{"src", []string{"src/main.ts"}, TypeModule},
		{"app/index", []string{"app/index/index.ts"}, TypeModule},
		{"src/orders", nil, TypeModule},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.dir, tt.files))
		})
	}
}

func TestNormalizeImport(t *testing.T) {
	tests := []struct {
		from, imp, want string
	}{
		{"src/a/b.ts", "./c/index.ts", "src/a/c"},
		{"src/a/b.ts", "../x.js", "src/x"},
		{"src/a/b.ts", "./c", "src/a/c"},
		{"index.ts", "./lib", "lib"},
		{"src/a.ts", "./index", "src"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeImport(tt.from, tt.imp), "%s + %s", tt.from, tt.imp)
	}
}
