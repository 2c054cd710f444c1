// Package source loads the project files the analyzers work on. Files are
// read once per pipeline run into an immutable Set that every analysis
// shares read-only.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-enry/go-enry/v2"
	"golang.org/x/sync/errgroup"
)

// File is one project file: a slash-separated path relative to the project
// root plus its raw text.
type File struct {
	Path     string
	Text     string
	Language string // go-enry language name, "" when unknown
}

// Lines returns the number of lines in the file.
func (f File) Lines() int {
	if f.Text == "" {
		return 0
	}
	n := 1
	for i := 0; i < len(f.Text); i++ {
		if f.Text[i] == '\n' {
			n++
		}
	}
	return n
}

// Reader gives on-demand access to project files.
type Reader interface {
	ReadFile(path string) ([]byte, error)
	Exists(path string) bool
}

// DirReader reads files relative to a root directory on disk.
type DirReader struct {
	Root string
}

// ReadFile reads a root-relative slash path.
func (d DirReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.Root, filepath.FromSlash(path)))
}

// Exists reports whether a regular file exists at the root-relative path.
func (d DirReader) Exists(path string) bool {
	info, err := os.Stat(filepath.Join(d.Root, filepath.FromSlash(path)))
	return err == nil && info.Mode().IsRegular()
}

// Set is the immutable result of loading a file list. Paths lists every
// requested file, readable or not; Get only knows the readable ones.
type Set struct {
	paths []string
	files map[string]File
}

// NewSet builds a Set directly from in-memory files. Every file is both
// listed and readable.
func NewSet(files ...File) *Set {
	s := &Set{files: make(map[string]File, len(files))}
	for _, f := range files {
		s.paths = append(s.paths, f.Path)
		s.files[f.Path] = f
	}
	sort.Strings(s.paths)
	return s
}

// Paths returns the full sorted file list.
func (s *Set) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Get returns the loaded file at path.
func (s *Set) Get(path string) (File, bool) {
	f, ok := s.files[path]
	return f, ok
}

// Readable returns the loaded files in path order.
func (s *Set) Readable() []File {
	out := make([]File, 0, len(s.files))
	for _, p := range s.paths {
		if f, ok := s.files[p]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of listed files.
func (s *Set) Len() int { return len(s.paths) }

// LoadOptions tunes Load.
type LoadOptions struct {
	// MaxSize skips files larger than this many bytes. Zero disables the limit.
	MaxSize int64
	// Concurrency bounds parallel reads. Zero means 16.
	Concurrency int
	Logger      *slog.Logger
}

// Load reads every path through r in parallel. A file that cannot be read or
// is too large is logged and left out of the readable set; it never fails the
// batch. The only error is ctx cancellation.
func Load(ctx context.Context, r Reader, paths []string, opts LoadOptions) (*Set, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 16
	}

	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	loaded := make([]*File, len(sorted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, p := range sorted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := r.ReadFile(p)
			if err != nil {
				logger.Debug("skipping unreadable file", "path", p, "err", err)
				return nil
			}
			if opts.MaxSize > 0 && int64(len(data)) > opts.MaxSize {
				logger.Debug("skipping large file", "path", p, "bytes", len(data))
				return nil
			}
			loaded[i] = &File{
				Path:     p,
				Text:     string(data),
				Language: DetectLanguage(p, data),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}

	set := &Set{paths: sorted, files: make(map[string]File, len(sorted))}
	for _, f := range loaded {
		if f != nil {
			set.files[f.Path] = *f
		}
	}
	return set, nil
}

// DetectLanguage names the language of a file, preferring the cheap
// extension lookup and falling back to content heuristics.
func DetectLanguage(path string, content []byte) string {
	if lang, safe := enry.GetLanguageByExtension(path); safe {
		return lang
	}
	return enry.GetLanguage(filepath.Base(path), content)
}

// PrimaryLanguage returns the most common language across the readable files,
// breaking ties by name. It returns "" for an empty set.
func PrimaryLanguage(s *Set) string {
	counts := make(map[string]int)
	for _, f := range s.Readable() {
		if f.Language != "" {
			counts[f.Language]++
		}
	}
	best, bestN := "", 0
	for lang, n := range counts {
		if n > bestN || (n == bestN && lang < best) {
			best, bestN = lang, n
		}
	}
	return best
}
