package computegraph

import (
	"maps"
	"slices"
	"time"
)

// ComputeGraph is the internal, execution-ready definition of a pipeline.
// A stored graph is immutable; later definitions get a new Version.
type ComputeGraph struct {
	Name        string
	Namespace   string
	Description string
	StartFn     Node
	Nodes       map[string]Node
	// Edges maps a node name to the names its output statically fans out to.
	Edges     map[string][]string
	Version   GraphVersion
	Code      Code
	CreatedAt uint64
}

// Code describes the packaged code implementing a graph's functions.
// Its identity is SHA256Hash; Size and Path are descriptive.
type Code struct {
	SHA256Hash string
	Size       uint64
	Path       string
}

// Equal reports whether c and other refer to the same code bytes.
func (c Code) Equal(other Code) bool {
	return c.SHA256Hash == other.SHA256Hash
}

// Node returns the node stored under name.
func (g *ComputeGraph) Node(name string) (Node, bool) {
	n, ok := g.Nodes[name]
	return n, ok
}

// Successors returns every node name that may run after name: the static
// edges first, then any router targets not already listed.
func (g *ComputeGraph) Successors(name string) []string {
	out := slices.Clone(g.Edges[name])
	r, ok := AsRouter(g.Nodes[name])
	if !ok {
		return out
	}
	for _, t := range r.TargetFns {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// Clone returns a deep copy of g.
func (g *ComputeGraph) Clone() *ComputeGraph {
	c := *g
	if g.StartFn != nil {
		c.StartFn = cloneNode(g.StartFn)
	}
	if g.Nodes != nil {
		c.Nodes = make(map[string]Node, len(g.Nodes))
		for k, n := range g.Nodes {
			c.Nodes[k] = cloneNode(n)
		}
	}
	if g.Edges != nil {
		c.Edges = make(map[string][]string, len(g.Edges))
		for k, to := range g.Edges {
			c.Edges[k] = slices.Clone(to)
		}
	}
	return &c
}

// NodeNames returns the graph's node names in sorted order.
func (g *ComputeGraph) NodeNames() []string {
	return slices.Sorted(maps.Keys(g.Nodes))
}

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
