package source

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Discover walks root and returns the sorted slash-relative paths of regular
// files that match at least one include pattern and no exclude pattern.
// Patterns use doublestar syntax ("**/*.ts"). A directory whose path matches
// the prefix of a "dir/**" exclude is not descended into.
func Discover(root string, include, exclude []string) ([]string, error) {
	if err := checkPatterns(include); err != nil {
		return nil, err
	}
	if err := checkPatterns(exclude); err != nil {
		return nil, err
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // skip inaccessible entries
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if SkipDir(rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matchAny(include, rel) && !matchAny(exclude, rel) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}

	sort.Strings(out)
	return out, nil
}

// Included reports whether a single slash-relative path passes the filters.
func Included(rel string, include, exclude []string) bool {
	return matchAny(include, rel) && !matchAny(exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// SkipDir reports whether a slash-relative directory is never descended
// into: .git, or a directory matched by the prefix of a "dir/**" exclude.
func SkipDir(rel string, exclude []string) bool {
	if path.Base(rel) == ".git" {
		return true
	}
	for _, p := range exclude {
		prefix, ok := strings.CutSuffix(p, "/**")
		if !ok {
			continue
		}
		if m, _ := doublestar.Match(prefix, rel); m {
			return true
		}
	}
	return false
}

func checkPatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := doublestar.Match(p, ""); err != nil {
			return fmt.Errorf("bad pattern %q: %w", p, err)
		}
	}
	return nil
}
