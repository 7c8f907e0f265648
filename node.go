package computegraph

import "slices"

// Node is one step of a compute graph. It is a closed set: only ComputeFn and
// DynamicRouter implement it. Use VisitNode to handle every variant.
type Node interface {
	// Name is the node's key within its graph.
	Name() string

	isNode()
}

// ComputeFn is a plain compute step backed by a function in the graph's code.
// When Reducer is set, repeated invocations fold into a single accumulated
// output instead of fanning out.
type ComputeFn struct {
	NodeName    string
	FnName      string
	Description string
	Reducer     bool
}

// DynamicRouter picks the next step at runtime, from TargetFns, based on the
// output of SourceFn.
type DynamicRouter struct {
	NodeName    string
	SourceFn    string
	Description string
	TargetFns   []string
}

func (c ComputeFn) Name() string     { return c.NodeName }
func (r DynamicRouter) Name() string { return r.NodeName }

func (ComputeFn) isNode()     {}
func (DynamicRouter) isNode() {}

// VisitNode dispatches on the variant of n. Every variant has its own
// callback, so a new variant is a compile error at each call site.
// It panics on a nil node.
func VisitNode[T any](n Node, onCompute func(ComputeFn) T, onRouter func(DynamicRouter) T) T {
	switch v := n.(type) {
	case ComputeFn:
		return onCompute(v)
	case *ComputeFn:
		return onCompute(*v)
	case DynamicRouter:
		return onRouter(v)
	case *DynamicRouter:
		return onRouter(*v)
	}
	panic("computegraph: nil node")
}

// IsReducer reports whether n is a reducing compute step.
func IsReducer(n Node) bool {
	return VisitNode(n,
		func(c ComputeFn) bool { return c.Reducer },
		func(DynamicRouter) bool { return false },
	)
}

// AsCompute returns n as a ComputeFn if it is one.
func AsCompute(n Node) (ComputeFn, bool) {
	switch c := n.(type) {
	case ComputeFn:
		return c, true
	case *ComputeFn:
		return *c, true
	}
	return ComputeFn{}, false
}

// AsRouter returns n as a DynamicRouter if it is one.
func AsRouter(n Node) (DynamicRouter, bool) {
	switch r := n.(type) {
	case DynamicRouter:
		return r, true
	case *DynamicRouter:
		return *r, true
	}
	return DynamicRouter{}, false
}

// SameNode reports whether a and b are the same variant with equal fields.
func SameNode(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return VisitNode(a,
		func(c ComputeFn) bool {
			other, ok := AsCompute(b)
			return ok && c == other
		},
		func(r DynamicRouter) bool {
			other, ok := AsRouter(b)
			return ok && r.NodeName == other.NodeName &&
				r.SourceFn == other.SourceFn &&
				r.Description == other.Description &&
				slices.Equal(r.TargetFns, other.TargetFns)
		},
	)
}

// cloneNode returns a copy of n that shares no slices with it.
func cloneNode(n Node) Node {
	return VisitNode(n,
		func(c ComputeFn) Node { return c },
		func(r DynamicRouter) Node {
			r.TargetFns = slices.Clone(r.TargetFns)
			return r
		},
	)
}
