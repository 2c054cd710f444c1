package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s := NewMemStore()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestMemStore_ComponentMembersAreCopied(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	members := []string{"src/a.ts"}
	require.NoError(t, s.AddComponent(ctx, ComponentNode{Name: "src", Members: members}))
	members[0] = "changed"

	comps, err := s.GetComponents(ctx)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, []string{"src/a.ts"}, comps[0].Members)
}

func TestMemStore_NeighborsIgnoreOtherEdgeKinds(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.AddFile(ctx, FileNode{Path: "a.ts"}))
	require.NoError(t, s.AddEdge(ctx, Edge{SourceID: "a.ts", TargetID: "core", Kind: EdgeKindBelongs}))

	chains, err := s.GetDependencies(ctx, "a.ts", DirectionUpstream, 3)
	require.NoError(t, err)
	assert.Empty(t, chains)
}
