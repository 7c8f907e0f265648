package computegraph

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

// Validate checks the graph's referential integrity and that it is acyclic.
// All problems found are returned together; each wraps ErrInvalidGraph,
// ErrNameMismatch or ErrCycleDetected.
func (g *ComputeGraph) Validate() error {
	var err error
	invalid := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: %s", ErrInvalidGraph, fmt.Sprintf(format, args...)))
	}

	if g.Name == "" {
		invalid("name is empty")
	}
	if g.Namespace == "" {
		invalid("namespace is empty")
	}
	if len(g.Nodes) == 0 {
		invalid("graph has no nodes")
	}

	names := g.NodeNames()
	for _, key := range names {
		n := g.Nodes[key]
		if n == nil {
			invalid("node %q is empty", key)
			continue
		}
		if n.Name() != key {
			err = multierr.Append(err, fmt.Errorf("%w: key %q, name %q", ErrNameMismatch, key, n.Name()))
		}
		if r, ok := AsRouter(n); ok {
			if _, ok := g.Nodes[r.SourceFn]; !ok {
				invalid("router %q: unknown source_fn %q", key, r.SourceFn)
			}
			if len(r.TargetFns) == 0 {
				invalid("router %q has no target_fns", key)
			}
			for _, t := range r.TargetFns {
				if _, ok := g.Nodes[t]; !ok {
					invalid("router %q: unknown target %q", key, t)
				}
			}
		}
	}

	if g.StartFn == nil {
		invalid("start_node is missing")
	} else if n, ok := g.Nodes[g.StartFn.Name()]; !ok {
		invalid("start_node %q is not in nodes", g.StartFn.Name())
	} else if n != nil && !SameNode(g.StartFn, n) {
		invalid("start_node %q differs from nodes[%q]", g.StartFn.Name(), g.StartFn.Name())
	}

	for from, to := range g.Edges {
		if _, ok := g.Nodes[from]; !ok {
			invalid("edge from unknown node %q", from)
		}
		for _, t := range to {
			if _, ok := g.Nodes[t]; !ok {
				invalid("edge %q -> unknown node %q", from, t)
			}
		}
	}

	if err != nil {
		return err
	}
	return g.validateAcyclic()
}

// validateAcyclic checks that edges and router targets don't form a cycle using DFS.
func (g *ComputeGraph) validateAcyclic() error {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int, len(g.Nodes))
	var path []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		state[name] = visiting
		path = append(path, name)
		for _, next := range g.Successors(name) {
			switch state[next] {
			case visiting:
				path = append(path[slices.Index(path, next):], next)
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		state[name] = visited
		return false
	}

	for _, name := range g.NodeNames() {
		if state[name] == unvisited && dfs(name) {
			return fmt.Errorf("%w: %s", ErrCycleDetected, strings.Join(path, " -> "))
		}
	}
	return nil
}
