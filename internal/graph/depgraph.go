package graph

import (
	"sort"

	"github.com/dusk-indust/dontreadme/internal/extract"
	"github.com/dusk-indust/dontreadme/internal/source"
)

// HubThreshold is the in-degree at which a file counts as a hub.
const HubThreshold = 5

// Node is one file in the dependency graph.
type Node struct {
	File       string   `json:"file"`
	Imports    []string `json:"imports"`
	ImportedBy []string `json:"importedBy"`
	InDegree   int      `json:"inDegree"`
	OutDegree  int      `json:"outDegree"`
}

// DependencyGraph is the file-level import graph of a project.
type DependencyGraph struct {
	Nodes        []Node     `json:"nodes"`
	CircularDeps [][]string `json:"circularDeps"`
	Hubs         []string   `json:"hubs"`
	Entrypoints  []string   `json:"entrypoints"`
	TotalFiles   int        `json:"totalFiles"`
	TotalEdges   int        `json:"totalEdges"`
}

// EmptyDependencyGraph is the artifact reported when the analysis did not run.
func EmptyDependencyGraph() DependencyGraph {
	return DependencyGraph{
		Nodes:        []Node{},
		CircularDeps: [][]string{},
		Hubs:         []string{},
		Entrypoints:  []string{},
	}
}

// Build resolves the relative imports of every file in files and assembles
// the dependency graph. Listed files that could not be read are nodes with no
// outgoing edges. A nil resolver gets a fresh one over files.Paths().
func Build(files *source.Set, scanner extract.Scanner, resolver *Resolver) DependencyGraph {
	paths := files.Paths()
	if resolver == nil {
		resolver = NewResolver(paths)
	}

	imports := make(map[string][]string, len(paths))
	importedBy := make(map[string][]string, len(paths))
	for _, p := range paths {
		f, ok := files.Get(p)
		if !ok {
			continue
		}
		var targets []string
		for _, imp := range scanner.Scan(f.Path, f.Text).RelativeImports() {
			if target, ok := resolver.Resolve(f.Path, imp); ok {
				targets = append(targets, target)
			}
		}
		targets = extract.SortedUnique(targets)
		imports[p] = targets
		for _, t := range targets {
			importedBy[t] = append(importedBy[t], p)
		}
	}

	g := EmptyDependencyGraph()
	g.TotalFiles = len(paths)
	g.Nodes = make([]Node, 0, len(paths))
	for _, p := range paths {
		imp := imports[p]
		if imp == nil {
			imp = []string{}
		}
		by := extract.SortedUnique(importedBy[p])
		g.Nodes = append(g.Nodes, Node{
			File:       p,
			Imports:    imp,
			ImportedBy: by,
			InDegree:   len(by),
			OutDegree:  len(imp),
		})
		g.TotalEdges += len(imp)
	}

	g.CircularDeps = FindCycles(paths, imports)

	var hubs []Node
	for _, n := range g.Nodes {
		if n.InDegree >= HubThreshold {
			hubs = append(hubs, n)
		}
		if n.InDegree == 0 {
			g.Entrypoints = append(g.Entrypoints, n.File)
		}
	}
	sort.SliceStable(hubs, func(i, j int) bool { return hubs[i].InDegree > hubs[j].InDegree })
	for _, n := range hubs {
		g.Hubs = append(g.Hubs, n.File)
	}
	return g
}

// Edges flattens the graph into IMPORTS edges in node order.
func (g DependencyGraph) Edges() []Edge {
	edges := make([]Edge, 0, g.TotalEdges)
	for _, n := range g.Nodes {
		for _, t := range n.Imports {
			edges = append(edges, Edge{SourceID: n.File, TargetID: t, Kind: EdgeKindImports})
		}
	}
	return edges
}
