//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a fresh in-memory KuzuStore with an initialized schema.
func newTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InitSchema(context.Background()), "InitSchema should not fail")
	return s
}

func TestKuzuStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return newTestStore(t) })
}

func TestKuzuStore_InitSchemaIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InitSchema(context.Background()))
}

func TestKuzuStore_UnsupportedEdgeKind(t *testing.T) {
	s := newTestStore(t)
	err := s.AddEdge(context.Background(), Edge{SourceID: "a", TargetID: "b", Kind: "CALLS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported edge kind")
}

func TestKuzuStore_UnknownDirection(t *testing.T) {
	s := newTestStore(t)
	seedDiamond(t, s)
	_, err := s.GetDependencies(context.Background(), "src/a.ts", Direction("sideways"), 2)
	require.Error(t, err)
}

func TestKuzuStore_FilePersists(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "index", "graph.kuzu")

	s, err := Open(ctx, dbPath)
	require.NoError(t, err)
	seedDiamond(t, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, GraphStats{FileCount: 4, ComponentCount: 1, EdgeCount: 6}, *stats)
}

func TestWriteIndex(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), ".dontreadme", IndexDir)

	written, err := WriteIndex(ctx, dbPath, indexFixture(t))
	require.NoError(t, err)
	assert.Equal(t, 4, written.FileCount)

	// Writing again replaces the index rather than appending to it.
	_, err = WriteIndex(ctx, dbPath, indexFixture(t))
	require.NoError(t, err)

	s, err := Open(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, *written, *stats)
}
