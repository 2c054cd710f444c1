package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCohesion(t *testing.T) {
	edges := []Edge{
		{SourceID: "a", TargetID: "b", Kind: EdgeKindImports},
		{SourceID: "a", TargetID: "c", Kind: EdgeKindImports},
		{SourceID: "d", TargetID: "b", Kind: EdgeKindImports},
		{SourceID: "c", TargetID: "d", Kind: EdgeKindImports},
		{SourceID: "a", TargetID: "core", Kind: EdgeKindBelongs},
	}

	assert.InDelta(t, 1.0/3.0, Cohesion([]string{"a", "b"}, edges), 1e-9)
	assert.InDelta(t, 1.0, Cohesion([]string{"a", "b", "c", "d"}, edges), 1e-9)
	assert.Zero(t, Cohesion([]string{"x"}, edges), "untouched group")
	assert.Zero(t, Cohesion(nil, nil))
}
