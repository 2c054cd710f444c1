// Package extract pulls structural facts (imports, exports, routes) out of
// JavaScript and TypeScript source text. Extraction never fails: text that
// does not match simply yields empty results.
package extract

import (
	"sort"
	"strings"
)

// ExportKind classifies an exported declaration.
type ExportKind string

const (
	ExportFunction  ExportKind = "function"
	ExportClass     ExportKind = "class"
	ExportConst     ExportKind = "const"
	ExportType      ExportKind = "type"
	ExportInterface ExportKind = "interface"
	ExportEnum      ExportKind = "enum"
	ExportDefault   ExportKind = "default"
)

// ImportKind tells which syntactic form produced an import.
type ImportKind string

const (
	ImportStatic   ImportKind = "import"
	ImportRequire  ImportKind = "require"
	ImportReexport ImportKind = "reexport"
)

// Import is one module specifier referenced by a file.
type Import struct {
	Specifier string
	Kind      ImportKind
	// From is set for `import ... from '<x>'` statements, as opposed to
	// bare side-effect imports.
	From bool
	Line int
}

// Relative reports whether the specifier points inside the project.
func (i Import) Relative() bool {
	return strings.HasPrefix(i.Specifier, "./") || strings.HasPrefix(i.Specifier, "../")
}

// External reports whether the import is an `import ... from` statement
// whose source is a package rather than a path.
func (i Import) External() bool {
	return i.Kind == ImportStatic && i.From && !strings.HasPrefix(i.Specifier, ".")
}

// Export is a declared export.
type Export struct {
	Name string     `json:"name"`
	Kind ExportKind `json:"type"`
	File string     `json:"file"`
	Line int        `json:"line,omitempty"`
}

// Facts is everything a Scanner learns from one file.
type Facts struct {
	Imports []Import // in source order
	Exports []Export // sorted by name then kind, unique per (name, kind)
}

// RelativeImports returns the relative specifiers in source order.
func (f Facts) RelativeImports() []string {
	var out []string
	for _, imp := range f.Imports {
		if imp.Relative() {
			out = append(out, imp.Specifier)
		}
	}
	return out
}

// ExternalImportCount counts `import ... from` statements of packages.
func (f Facts) ExternalImportCount() int {
	n := 0
	for _, imp := range f.Imports {
		if imp.External() {
			n++
		}
	}
	return n
}

// ExportNames returns the sorted unique exported names.
func (f Facts) ExportNames() []string {
	names := make([]string, 0, len(f.Exports))
	for _, e := range f.Exports {
		names = append(names, e.Name)
	}
	return SortedUnique(names)
}

// Scanner extracts Facts from a single file. Implementations must be safe
// for concurrent use and must not fail on malformed input.
type Scanner interface {
	Scan(path, text string) Facts
}

// IsPublicSurface reports whether exports of the file at path belong to the
// project's public surface: index files and files under api, routes or
// handlers directories.
func IsPublicSurface(path string) bool {
	return strings.Contains(path, "index.") ||
		strings.Contains(path, "/api/") ||
		strings.Contains(path, "/routes/") ||
		strings.Contains(path, "/handlers/")
}

// SortedUnique returns a sorted copy of ss with duplicates removed.
func SortedUnique(ss []string) []string {
	if len(ss) == 0 {
		return []string{}
	}
	out := make([]string, len(ss))
	copy(out, ss)
	sort.Strings(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

// finishExports sorts and dedupes exports in place.
func finishExports(exports []Export) []Export {
	sort.Slice(exports, func(i, j int) bool {
		a, b := exports[i], exports[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Line < b.Line
	})
	out := exports[:0]
	for i, e := range exports {
		if i > 0 && e.Name == exports[i-1].Name && e.Kind == exports[i-1].Kind {
			continue
		}
		out = append(out, e)
	}
	return out
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(text string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (l lineIndex) line(offset int) int {
	return sort.Search(len(l), func(i int) bool { return l[i] > offset })
}

// UnknownScannerError reports a scanner name no implementation is
// registered under.
type UnknownScannerError struct {
	Name string
}

func (e *UnknownScannerError) Error() string {
	return "unknown scanner: " + e.Name
}
