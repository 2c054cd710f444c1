package graph

import (
	"context"
	"sort"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu         sync.RWMutex
	files      map[string]FileNode
	components map[string]ComponentNode
	edges      []Edge
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		files:      make(map[string]FileNode),
		components: make(map[string]ComponentNode),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// Reset drops all nodes and edges.
func (m *MemStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]FileNode)
	m.components = make(map[string]ComponentNode)
	m.edges = nil
	return nil
}

// AddFile stores a file node keyed by its path.
func (m *MemStore) AddFile(_ context.Context, node FileNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[node.Path] = node
	return nil
}

// AddComponent stores a component node keyed by its name.
func (m *MemStore) AddComponent(_ context.Context, node ComponentNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node.Members = append([]string(nil), node.Members...)
	m.components[node.Name] = node
	return nil
}

// AddEdge appends an edge to the internal slice.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edge)
	return nil
}

// GetFile returns the file node for the given path, or nil if not found.
func (m *MemStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// GetComponents returns all components sorted by name.
func (m *MemStore) GetComponents(_ context.Context) ([]ComponentNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ComponentNode, 0, len(m.components))
	for _, c := range m.components {
		c.Members = append([]string{}, c.Members...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetAllEdges returns a copy of all edges in the store.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// GetDependencies performs a BFS over IMPORTS edges from nodeID in the given
// direction, up to maxDepth hops. It returns one DependencyChain per
// reachable file.
func (m *MemStore) GetDependencies(_ context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return bfs(nodeID, maxDepth, func(id string) ([]string, error) {
		return m.neighbors(id, direction), nil
	})
}

// neighbors returns the sorted files one IMPORTS hop from id.
func (m *MemStore) neighbors(id string, direction Direction) []string {
	var result []string
	for _, e := range m.edges {
		if e.Kind != EdgeKindImports {
			continue
		}
		switch direction {
		case DirectionUpstream:
			if e.SourceID == id {
				result = append(result, e.TargetID)
			}
		case DirectionDownstream:
			if e.TargetID == id {
				result = append(result, e.SourceID)
			}
		}
	}
	sort.Strings(result)
	return result
}

// AssessImpact computes the blast radius of changing the given files by
// following IMPORTS edges from importer to importer.
func (m *MemStore) AssessImpact(_ context.Context, changedFiles []string) (*ImpactResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return assessImpact(changedFiles, len(m.files), func(id string) ([]string, error) {
		return m.neighbors(id, DirectionDownstream), nil
	})
}

// Stats returns counts of all node and edge types in the index.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{
		FileCount:      len(m.files),
		ComponentCount: len(m.components),
		EdgeCount:      len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
