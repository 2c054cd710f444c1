package graph

import (
	"context"
	"errors"
	"io"
)

// ErrPersistenceUnavailable is returned by Open for an on-disk index in a
// build without cgo.
var ErrPersistenceUnavailable = errors.New("persistent graph index requires a cgo build")

// Store is the interface for the graph index backend.
// Implementations: KuzuStore (cgo builds) and MemStore.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Reset drops all nodes and edges so the index can be rebuilt.
	Reset(ctx context.Context) error

	// Write operations.
	AddFile(ctx context.Context, node FileNode) error
	AddComponent(ctx context.Context, node ComponentNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Read operations.
	GetFile(ctx context.Context, path string) (*FileNode, error)
	GetComponents(ctx context.Context) ([]ComponentNode, error)
	GetAllEdges(ctx context.Context) ([]Edge, error)

	// Graph traversal over IMPORTS edges.
	GetDependencies(ctx context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error)
	AssessImpact(ctx context.Context, changedFiles []string) (*ImpactResult, error)

	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what does this file import?
	DirectionDownstream Direction = "downstream" // what imports this file?
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionUpstream || d == DirectionDownstream
}
