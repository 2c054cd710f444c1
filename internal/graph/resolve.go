package graph

import (
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// resolveExtensions are probed, in order, after the exact path.
var resolveExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

const resolveCacheSize = 4096

// Resolver maps relative import specifiers to files in a known file set.
// A Resolver is built for one analysis run and then discarded; its cache is
// only valid for the file set it was built with.
type Resolver struct {
	known map[string]bool
	cache *lru.Cache[string, string]
}

// NewResolver returns a Resolver over the given project-relative paths.
func NewResolver(files []string) *Resolver {
	known := make(map[string]bool, len(files))
	for _, f := range files {
		known[f] = true
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, string](resolveCacheSize)
	return &Resolver{known: known, cache: cache}
}

// Resolve returns the file that the import path imp, written in the file at from,
// refers to. Only relative specifiers ("./", "../") are considered; anything
// else, or anything that matches no known file, reports false.
func (r *Resolver) Resolve(from, imp string) (string, bool) {
	if !isRelative(imp) {
		return "", false
	}
	dir := path.Dir(from)
	key := dir + "\x00" + imp
	if target, ok := r.cache.Get(key); ok {
		return target, target != ""
	}
	target := r.probe(path.Join(dir, imp))
	r.cache.Add(key, target)
	return target, target != ""
}

func (r *Resolver) probe(base string) string {
	if r.known[base] {
		return base
	}
	for _, ext := range resolveExtensions {
		if r.known[base+ext] {
			return base + ext
		}
	}
	for _, ext := range resolveExtensions {
		if p := base + "/index" + ext; r.known[p] {
			return p
		}
	}
	return ""
}

func isRelative(imp string) bool {
	return strings.HasPrefix(imp, "./") || strings.HasPrefix(imp, "../")
}
