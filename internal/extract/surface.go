package extract

import (
	"sort"

	"github.com/dusk-indust/dontreadme/internal/source"
)

// APISurface is the api-surface artifact.
type APISurface struct {
	Framework *string  `json:"framework"`
	Routes    []Route  `json:"routes"`
	Exports   []Export `json:"exports"`
	Endpoints []Route  `json:"endpoints"`
}

// EmptySurface is the api-surface result when the analysis did not run.
func EmptySurface() *APISurface {
	return &APISurface{Routes: []Route{}, Exports: []Export{}, Endpoints: []Route{}}
}

// BuildSurface collects routes and public exports across every readable
// file in the set.
func BuildSurface(files *source.Set, fw Framework, scanner Scanner) *APISurface {
	s := EmptySurface()
	if fw != FrameworkNone {
		name := string(fw)
		s.Framework = &name
	}

	for _, f := range files.Readable() {
		s.Routes = append(s.Routes, Routes(f.Path, f.Text, fw)...)
		if IsPublicSurface(f.Path) {
			s.Exports = append(s.Exports, scanner.Scan(f.Path, f.Text).Exports...)
		}
	}

	sort.Slice(s.Routes, func(i, j int) bool {
		a, b := s.Routes[i], s.Routes[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
	sort.Slice(s.Exports, func(i, j int) bool {
		a, b := s.Exports[i], s.Exports[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Kind < b.Kind
	})

	s.Endpoints = make([]Route, len(s.Routes))
	copy(s.Endpoints, s.Routes)
	return s
}
