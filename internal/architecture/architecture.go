// Package architecture groups source files into directory-level components,
// derives the dependencies between them and orders them into layers.
package architecture

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/dusk-indust/dontreadme/internal/extract"
	"github.com/dusk-indust/dontreadme/internal/source"
)

// ComponentType classifies a component by its directory.
type ComponentType string

const (
	TypeModule     ComponentType = "module"
	TypeComponent  ComponentType = "component"
	TypeService    ComponentType = "service"
	TypeUtility    ComponentType = "utility"
	TypeConfig     ComponentType = "config"
	TypeTest       ComponentType = "test"
	TypeEntrypoint ComponentType = "entrypoint"
)

// Component is every analyzed file in one directory.
type Component struct {
	Name    string        `json:"name"`
	Path    string        `json:"path"`
	Files   []string      `json:"files"`
	Type    ComponentType `json:"type"`
	Exports []string      `json:"exports"`
	Imports []string      `json:"imports"`
}

// Edge is the merged set of imports from one component into another.
type Edge struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Imports []string `json:"imports"`
}

// Layer is one step of the topological ordering.
type Layer struct {
	Name       string   `json:"name"`
	Components []string `json:"components"`
	Level      int      `json:"level"`
}

// Architecture is the component-level view of a project.
type Architecture struct {
	Components  []Component `json:"components"`
	Edges       []Edge      `json:"edges"`
	Layers      []Layer     `json:"layers"`
	Entrypoints []string    `json:"entrypoints"`
}

// Empty is the artifact reported when the analysis did not run.
func Empty() Architecture {
	return Architecture{
		Components:  []Component{},
		Edges:       []Edge{},
		Layers:      []Layer{},
		Entrypoints: []string{},
	}
}

// Component returns the component with the given name.
func (a Architecture) Component(name string) (Component, bool) {
	for _, c := range a.Components {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}

// LayerOf returns the level of the layer holding the named component, or -1.
func (a Architecture) LayerOf(name string) int {
	for _, l := range a.Layers {
		for _, c := range l.Components {
			if c == name {
				return l.Level
			}
		}
	}
	return -1
}

var sourceExtRe = regexp.MustCompile(`\.(ts|tsx|js|jsx)$`)

// NormalizeImport joins a relative import path onto the importing file's
// directory and drops any source extension and trailing /index, so that
// "./util/index.ts" and "./util" compare equal.
func NormalizeImport(from, imp string) string {
	p := path.Join(path.Dir(from), imp)
	p = sourceExtRe.ReplaceAllString(p, "")
	return strings.TrimSuffix(p, "/index")
}

// ComponentName maps a directory to its component name.
func ComponentName(dir string) string {
	if dir == "." {
		return "root"
	}
	return strings.ReplaceAll(dir, "/", ".")
}

// Classify derives a component type from its directory and file list.
func Classify(dir string, files []string) ComponentType {
	d := strings.ToLower(dir)
	switch {
	case strings.Contains(d, "test"): // also covers __test
		return TypeTest
	case strings.Contains(d, "config") || strings.Contains(d, "env"):
		return TypeConfig
	case strings.Contains(d, "util") || strings.Contains(d, "helper") || strings.Contains(d, "lib"):
		return TypeUtility
	case strings.Contains(d, "service") || strings.Contains(d, "provider"):
		return TypeService
	case strings.Contains(d, "component") || strings.Contains(d, "ui") || strings.Contains(d, "view"):
		return TypeComponent
	}
	if dir == "." || dir == "src" {
		for _, f := range files {
			if strings.HasPrefix(path.Base(f), "index.") {
				return TypeEntrypoint
			}
		}
	}
	return TypeModule
}

type fileFacts struct {
	path    string
	imports []string // normalized
	exports []string
}

// Analyze builds the architecture of the readable files in files.
func Analyze(files *source.Set, scanner extract.Scanner) Architecture {
	byDir := map[string][]fileFacts{}
	for _, f := range files.Readable() {
		facts := scanner.Scan(f.Path, f.Text)
		var imports []string
		for _, imp := range facts.RelativeImports() {
			imports = append(imports, NormalizeImport(f.Path, imp))
		}
		dir := path.Dir(f.Path)
		byDir[dir] = append(byDir[dir], fileFacts{
			path:    f.Path,
			imports: extract.SortedUnique(imports),
			exports: facts.ExportNames(),
		})
	}

	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	arch := Empty()
	byPath := make(map[string]*Component, len(dirs))
	for _, dir := range dirs {
		var paths, exports, imports []string
		for _, ff := range byDir[dir] {
			paths = append(paths, ff.path)
			exports = append(exports, ff.exports...)
			imports = append(imports, ff.imports...)
		}
		paths = extract.SortedUnique(paths)
		arch.Components = append(arch.Components, Component{
			Name:    ComponentName(dir),
			Path:    dir,
			Files:   paths,
			Type:    Classify(dir, paths),
			Exports: extract.SortedUnique(exports),
			Imports: extract.SortedUnique(imports),
		})
	}
	for i := range arch.Components {
		byPath[arch.Components[i].Path] = &arch.Components[i]
	}
	// stems holds every listed file without its extension. A normalized
	// import naming a component directory is a barrel import of that
	// directory's index unless a file with the same stem exists.
	stems := make(map[string]bool, files.Len())
	for _, p := range files.Paths() {
		stems[sourceExtRe.ReplaceAllString(p, "")] = true
	}

	for _, c := range arch.Components {
		targets := map[string][]string{}
		for _, ff := range byDir[c.Path] {
			for _, imp := range ff.imports {
				target := path.Dir(imp)
				if _, isDir := byPath[imp]; isDir && !stems[imp] {
					target = imp
				}
				dir, ok := owningComponent(target, byPath)
				if !ok || dir == c.Path {
					continue
				}
				targets[dir] = append(targets[dir], imp)
			}
		}
		targetDirs := make([]string, 0, len(targets))
		for d := range targets {
			targetDirs = append(targetDirs, d)
		}
		sort.Strings(targetDirs)
		for _, d := range targetDirs {
			arch.Edges = append(arch.Edges, Edge{
				From:    c.Name,
				To:      byPath[d].Name,
				Imports: extract.SortedUnique(targets[d]),
			})
		}
	}

	arch.Layers = Layers(arch.Components, arch.Edges)

	targeted := map[string]bool{}
	for _, e := range arch.Edges {
		targeted[e.To] = true
	}
	for _, c := range arch.Components {
		if !targeted[c.Name] {
			arch.Entrypoints = append(arch.Entrypoints, c.Name)
		}
	}
	sort.Strings(arch.Entrypoints)
	return arch
}

// owningComponent finds the nearest known component directory at or above
// dir. The walk stops at the first path segment; "." is only matched
// directly.
func owningComponent(dir string, known map[string]*Component) (string, bool) {
	if _, ok := known[dir]; ok {
		return dir, true
	}
	parts := strings.Split(dir, "/")
	for len(parts) > 0 {
		candidate := strings.Join(parts, "/")
		if _, ok := known[candidate]; ok {
			return candidate, true
		}
		parts = parts[:len(parts)-1]
	}
	return "", false
}
