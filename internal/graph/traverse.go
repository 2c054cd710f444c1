package graph

import (
	"math"
	"sort"
)

// DefaultMaxDepth bounds traversals whose caller passed no depth.
const DefaultMaxDepth = 10

type neighborFunc func(id string) ([]string, error)

// bfs walks from start one hop at a time and returns a chain for every
// newly reached node, in discovery order.
func bfs(start string, maxDepth int, next neighborFunc) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{start: true}
	queue := []bfsEntry{{id: start, path: []string{start}}}
	chains := []DependencyChain{}

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			neighbors, err := next(entry.id)
			if err != nil {
				return nil, err
			}
			for _, nb := range neighbors {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, DependencyChain{
					Nodes: newPath,
					Depth: len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}
	return chains, nil
}

// assessImpact expands importers of the changed files until closure.
// importers must return the files that import id.
func assessImpact(changedFiles []string, totalFiles int, importers neighborFunc) (*ImpactResult, error) {
	changed := make(map[string]bool, len(changedFiles))
	for _, f := range changedFiles {
		changed[f] = true
	}

	direct := map[string]bool{}
	for _, f := range changedFiles {
		nbs, err := importers(f)
		if err != nil {
			return nil, err
		}
		for _, nb := range nbs {
			if !changed[nb] {
				direct[nb] = true
			}
		}
	}

	all := make(map[string]bool, len(direct))
	frontier := make([]string, 0, len(direct))
	for f := range direct {
		all[f] = true
		frontier = append(frontier, f)
	}
	for len(frontier) > 0 {
		var next []string
		for _, f := range frontier {
			nbs, err := importers(f)
			if err != nil {
				return nil, err
			}
			for _, nb := range nbs {
				if changed[nb] || all[nb] {
					continue
				}
				all[nb] = true
				next = append(next, nb)
			}
		}
		frontier = next
	}

	risk := 0.0
	if totalFiles > 0 {
		risk = math.Min(1.0, float64(len(all))/float64(totalFiles))
	}
	return &ImpactResult{
		DirectlyAffected:     setToSlice(direct),
		TransitivelyAffected: setToSlice(all),
		RiskScore:            risk,
	}, nil
}

// setToSlice converts a string set to a sorted slice.
func setToSlice(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
