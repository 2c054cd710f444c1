package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/dontreadme/internal/architecture"
	"github.com/dusk-indust/dontreadme/internal/history"
	"github.com/dusk-indust/dontreadme/internal/risk"
	"github.com/dusk-indust/dontreadme/internal/source"
)

// IndexDir is the on-disk index location inside the output directory.
const IndexDir = "graph"

// IndexInput is the analysis output loaded into a Store.
type IndexInput struct {
	Files        *source.Set
	Graph        DependencyGraph
	Architecture architecture.Architecture
	Hotspots     history.Hotspots
	Risk         risk.Profile
}

// Index replaces the contents of store with the given analysis: one File
// node per graph node, one Component node per component, and IMPORTS,
// BELONGS_TO and DEPENDS_ON edges between them.
func Index(ctx context.Context, store Store, in IndexInput) (*GraphStats, error) {
	if err := store.InitSchema(ctx); err != nil {
		return nil, err
	}
	if err := store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset index: %w", err)
	}

	hotspots := make(map[string]float64, len(in.Hotspots.Hotspots))
	for _, h := range in.Hotspots.Hotspots {
		hotspots[h.File] = h.Score
	}
	entries := make(map[string]risk.Entry, len(in.Risk.Entries))
	for _, e := range in.Risk.Entries {
		entries[e.File] = e
	}

	known := make(map[string]bool, len(in.Graph.Nodes))
	for _, n := range in.Graph.Nodes {
		node := FileNode{Path: n.File, HotspotScore: hotspots[n.File]}
		if in.Files != nil {
			if f, ok := in.Files.Get(n.File); ok {
				node.Language = f.Language
				node.LOC = f.Lines()
			}
		}
		if e, ok := entries[n.File]; ok {
			node.RiskScore = e.FinalScore
			node.Severity = string(e.Severity)
		}
		if err := store.AddFile(ctx, node); err != nil {
			return nil, fmt.Errorf("index file %s: %w", n.File, err)
		}
		known[n.File] = true
	}

	imports := in.Graph.Edges()
	for _, e := range imports {
		if err := store.AddEdge(ctx, e); err != nil {
			return nil, fmt.Errorf("index import %s -> %s: %w", e.SourceID, e.TargetID, err)
		}
	}

	for _, c := range in.Architecture.Components {
		var members []string
		for _, f := range c.Files {
			if known[f] {
				members = append(members, f)
			}
		}
		node := ComponentNode{
			Name:     c.Name,
			Path:     c.Path,
			Type:     string(c.Type),
			Layer:    in.Architecture.LayerOf(c.Name),
			Cohesion: history.Round2(Cohesion(members, imports)),
			Members:  members,
		}
		if err := store.AddComponent(ctx, node); err != nil {
			return nil, fmt.Errorf("index component %s: %w", c.Name, err)
		}
		for _, f := range members {
			if err := store.AddEdge(ctx, Edge{SourceID: f, TargetID: c.Name, Kind: EdgeKindBelongs}); err != nil {
				return nil, fmt.Errorf("index membership %s: %w", f, err)
			}
		}
	}

	for _, e := range in.Architecture.Edges {
		if err := store.AddEdge(ctx, Edge{SourceID: e.From, TargetID: e.To, Kind: EdgeKindDependsOn}); err != nil {
			return nil, fmt.Errorf("index component edge %s -> %s: %w", e.From, e.To, err)
		}
	}

	return store.Stats(ctx)
}

// WriteIndex loads in into the on-disk index at dbPath, replacing what was
// there. Builds without cgo return ErrPersistenceUnavailable.
func WriteIndex(ctx context.Context, dbPath string, in IndexInput) (*GraphStats, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	store, err := Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return Index(ctx, store, in)
}
