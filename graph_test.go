package computegraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routerGraph is a -> router_x -> {y, z} -> c.
func routerGraph() *ComputeGraph {
	a := ComputeFn{NodeName: "a", FnName: "a"}
	return &ComputeGraph{
		Name:      "g",
		Namespace: "ns",
		StartFn:   a,
		Nodes: map[string]Node{
			"a":        a,
			"router_x": DynamicRouter{NodeName: "router_x", SourceFn: "a", TargetFns: []string{"y", "z"}},
			"y":        ComputeFn{NodeName: "y", FnName: "y"},
			"z":        ComputeFn{NodeName: "z", FnName: "z"},
			"c":        ComputeFn{NodeName: "c", FnName: "c", Reducer: true},
		},
		Edges: map[string][]string{
			"a": {"router_x"},
			"y": {"c"},
			"z": {"c"},
		},
		Code: Code{SHA256Hash: "abc", Size: 10, Path: "file:///code/abc"},
	}
}

func TestSuccessors(t *testing.T) {
	g := routerGraph()

	assert.Equal(t, []string{"router_x"}, g.Successors("a"))
	assert.Equal(t, []string{"y", "z"}, g.Successors("router_x"))
	assert.Equal(t, []string{"c"}, g.Successors("y"))
	assert.Empty(t, g.Successors("c"))
	assert.Empty(t, g.Successors("missing"))

	// Router targets already present in edges are not repeated.
	g.Edges["router_x"] = []string{"z"}
	assert.Equal(t, []string{"z", "y"}, g.Successors("router_x"))
}

func TestCloneIsDeep(t *testing.T) {
	g := routerGraph()
	c := g.Clone()
	require.Empty(t, cmp.Diff(g, c))

	c.Edges["a"][0] = "changed"
	c.Nodes["a"] = ComputeFn{NodeName: "a", FnName: "other"}
	c.Nodes["router_x"].(DynamicRouter).TargetFns[0] = "changed"

	assert.Equal(t, "router_x", g.Edges["a"][0])
	assert.Equal(t, "a", g.Nodes["a"].(ComputeFn).FnName)
	assert.Equal(t, "y", g.Nodes["router_x"].(DynamicRouter).TargetFns[0])
}

func TestNodeNamesSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "c", "router_x", "y", "z"}, routerGraph().NodeNames())
}

func TestCodeIdentityIsHash(t *testing.T) {
	a := Code{SHA256Hash: "abc", Size: 10, Path: "file:///one/abc"}
	b := Code{SHA256Hash: "abc", Size: 10, Path: "s3://bucket/code/abc"}
	c := Code{SHA256Hash: "def", Size: 10, Path: "file:///one/abc"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
