package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDiamond loads a four-file diamond into s:
//
//	a -> b -> d
//	a -> c -> d
//
// with a and b in the "core" component.
func seedDiamond(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, f := range []FileNode{
		{Path: "src/a.ts", Language: "TypeScript", LOC: 40, HotspotScore: 12.5, RiskScore: 16.2, Severity: "critical"},
		{Path: "src/b.ts", Language: "TypeScript", LOC: 10},
		{Path: "src/c.ts", Language: "TypeScript", LOC: 10},
		{Path: "src/d.ts", Language: "TypeScript", LOC: 5},
	} {
		require.NoError(t, s.AddFile(ctx, f))
	}
	for _, e := range [][2]string{
		{"src/a.ts", "src/b.ts"},
		{"src/a.ts", "src/c.ts"},
		{"src/b.ts", "src/d.ts"},
		{"src/c.ts", "src/d.ts"},
	} {
		require.NoError(t, s.AddEdge(ctx, Edge{SourceID: e[0], TargetID: e[1], Kind: EdgeKindImports}))
	}
	require.NoError(t, s.AddComponent(ctx, ComponentNode{
		Name: "core", Path: "src", Type: "module", Layer: 1, Cohesion: 0.5,
		Members: []string{"src/b.ts", "src/a.ts"},
	}))
	for _, f := range []string{"src/a.ts", "src/b.ts"} {
		require.NoError(t, s.AddEdge(ctx, Edge{SourceID: f, TargetID: "core", Kind: EdgeKindBelongs}))
	}
}

func chainNodes(chains []DependencyChain) [][]string {
	out := make([][]string, 0, len(chains))
	for _, c := range chains {
		out = append(out, c.Nodes)
	}
	return out
}

// runStoreContract checks behavior every Store implementation must share.
func runStoreContract(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("FileRoundTrip", func(t *testing.T) {
		s := open(t)
		seedDiamond(t, s)

		got, err := s.GetFile(ctx, "src/a.ts")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, FileNode{
			Path: "src/a.ts", Language: "TypeScript", LOC: 40,
			HotspotScore: 12.5, RiskScore: 16.2, Severity: "critical",
		}, *got)
	})

	t.Run("GetFileNotFound", func(t *testing.T) {
		s := open(t)
		got, err := s.GetFile(ctx, "src/missing.ts")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Components", func(t *testing.T) {
		s := open(t)
		seedDiamond(t, s)
		require.NoError(t, s.AddComponent(ctx, ComponentNode{Name: "app", Path: "app", Type: "entrypoint"}))

		comps, err := s.GetComponents(ctx)
		require.NoError(t, err)
		require.Len(t, comps, 2)
		assert.Equal(t, "app", comps[0].Name)
		assert.Empty(t, comps[0].Members)
		assert.Equal(t, "core", comps[1].Name)
		assert.Equal(t, "module", comps[1].Type)
		assert.Equal(t, 1, comps[1].Layer)
		assert.Equal(t, 0.5, comps[1].Cohesion)
		assert.ElementsMatch(t, []string{"src/a.ts", "src/b.ts"}, comps[1].Members)
	})

	t.Run("AllEdges", func(t *testing.T) {
		s := open(t)
		seedDiamond(t, s)
		edges, err := s.GetAllEdges(ctx)
		require.NoError(t, err)
		assert.Len(t, edges, 6)
		assert.Contains(t, edges, Edge{SourceID: "src/b.ts", TargetID: "core", Kind: EdgeKindBelongs})
	})

	t.Run("Upstream", func(t *testing.T) {
		s := open(t)
		seedDiamond(t, s)
		chains, err := s.GetDependencies(ctx, "src/a.ts", DirectionUpstream, 10)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"src/a.ts", "src/b.ts"},
			{"src/a.ts", "src/c.ts"},
			{"src/a.ts", "src/b.ts", "src/d.ts"},
		}, chainNodes(chains))
		assert.Equal(t, 2, chains[2].Depth)
	})

	t.Run("Downstream", func(t *testing.T) {
		s := open(t)
		seedDiamond(t, s)
		chains, err := s.GetDependencies(ctx, "src/d.ts", DirectionDownstream, 0)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"src/d.ts", "src/b.ts"},
			{"src/d.ts", "src/c.ts"},
			{"src/d.ts", "src/b.ts", "src/a.ts"},
		}, chainNodes(chains))
	})

	t.Run("DepthLimit", func(t *testing.T) {
		s := open(t)
		seedDiamond(t, s)
		chains, err := s.GetDependencies(ctx, "src/a.ts", DirectionUpstream, 1)
		require.NoError(t, err)
		assert.Len(t, chains, 2)
	})

	t.Run("NoDependencies", func(t *testing.T) {
		s := open(t)
		seedDiamond(t, s)
		chains, err := s.GetDependencies(ctx, "src/d.ts", DirectionUpstream, 5)
		require.NoError(t, err)
		assert.Empty(t, chains)
	})

	t.Run("AssessImpact", func(t *testing.T) {
		s := open(t)
		seedDiamond(t, s)
		res, err := s.AssessImpact(ctx, []string{"src/d.ts"})
		require.NoError(t, err)
		assert.Equal(t, []string{"src/b.ts", "src/c.ts"}, res.DirectlyAffected)
		assert.Equal(t, []string{"src/a.ts", "src/b.ts", "src/c.ts"}, res.TransitivelyAffected)
		assert.InDelta(t, 0.75, res.RiskScore, 1e-9)
	})

	t.Run("AssessImpactMultiple", func(t *testing.T) {
		s := open(t)
		seedDiamond(t, s)
		res, err := s.AssessImpact(ctx, []string{"src/b.ts", "src/c.ts"})
		require.NoError(t, err)
		assert.Equal(t, []string{"src/a.ts"}, res.DirectlyAffected)
		assert.Equal(t, []string{"src/a.ts"}, res.TransitivelyAffected)
		assert.InDelta(t, 0.25, res.RiskScore, 1e-9)
	})

	t.Run("AssessImpactNone", func(t *testing.T) {
		s := open(t)
		seedDiamond(t, s)
		res, err := s.AssessImpact(ctx, []string{"src/a.ts"})
		require.NoError(t, err)
		assert.Empty(t, res.DirectlyAffected)
		assert.Empty(t, res.TransitivelyAffected)
		assert.Zero(t, res.RiskScore)
	})

	t.Run("StatsAndReset", func(t *testing.T) {
		s := open(t)
		seedDiamond(t, s)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, GraphStats{FileCount: 4, ComponentCount: 1, EdgeCount: 6}, *stats)

		require.NoError(t, s.Reset(ctx))
		stats, err = s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, GraphStats{}, *stats)

		got, err := s.GetFile(ctx, "src/a.ts")
		require.NoError(t, err)
		assert.Nil(t, got)

		// the store is reusable after a reset
		seedDiamond(t, s)
		stats, err = s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.FileCount)
	})
}
