package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/meikuraledutech/computegraph"
)

// ComputeGraph is the wire form of a graph definition, as submitted by SDKs
// and returned by read APIs.
// A key repeated inside "nodes" is not detected; the last occurrence wins.
type ComputeGraph struct {
	Name        string              `json:"name"`
	Namespace   string              `json:"namespace"`
	Description string              `json:"description"`
	StartNode   Node                `json:"start_node"`
	Nodes       map[string]Node     `json:"nodes"`
	Edges       map[string][]string `json:"edges"`
	// CreatedAt is optional on input and defaults to the current time.
	CreatedAt uint64 `json:"created_at"`
	// Version is set on output only and ignored on input.
	Version computegraph.GraphVersion `json:"version,omitempty"`
}

type computeGraphAlias ComputeGraph

// UnmarshalJSON fills CreatedAt with the current time when it is absent.
func (g *ComputeGraph) UnmarshalJSON(data []byte) error {
	aux := struct {
		*computeGraphAlias
		CreatedAt *uint64 `json:"created_at"`
	}{computeGraphAlias: (*computeGraphAlias)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.CreatedAt != nil {
		g.CreatedAt = *aux.CreatedAt
	} else {
		g.CreatedAt = computegraph.NowMillis()
	}
	return nil
}

// ComputeGraphFromModel converts an internal graph to its wire form.
func ComputeGraphFromModel(g *computegraph.ComputeGraph) ComputeGraph {
	out := ComputeGraph{
		Name:        g.Name,
		Namespace:   g.Namespace,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
		Version:     g.Version,
	}
	if g.StartFn != nil {
		out.StartNode = NodeFromModel(g.StartFn)
	}
	if g.Nodes != nil {
		out.Nodes = make(map[string]Node, len(g.Nodes))
		for name, n := range g.Nodes {
			out.Nodes[name] = NodeFromModel(n)
		}
	}
	if g.Edges != nil {
		out.Edges = make(map[string][]string, len(g.Edges))
		for from, to := range g.Edges {
			out.Edges[from] = slices.Clone(to)
		}
	}
	return out
}

// IntoModel translates the wire graph into the internal model, binding it to
// code. Version is left unassigned. It rejects malformed nodes and nodes whose
// declared name differs from their key, but does not check edges or cycles;
// see ComputeGraph.Validate.
func (g ComputeGraph) IntoModel(code computegraph.Code) (*computegraph.ComputeGraph, error) {
	start, err := g.StartNode.IntoModel()
	if err != nil {
		return nil, fmt.Errorf("start_node: %w", err)
	}

	var nodes map[string]computegraph.Node
	if g.Nodes != nil {
		nodes = make(map[string]computegraph.Node, len(g.Nodes))
	}
	for key, wn := range g.Nodes {
		n, err := wn.IntoModel()
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", key, err)
		}
		if n.Name() != key {
			return nil, fmt.Errorf("%w: key %q, name %q", computegraph.ErrNameMismatch, key, n.Name())
		}
		nodes[key] = n
	}

	var edges map[string][]string
	if g.Edges != nil {
		edges = make(map[string][]string, len(g.Edges))
		for from, to := range g.Edges {
			edges[from] = slices.Clone(to)
		}
	}

	return &computegraph.ComputeGraph{
		Name:        g.Name,
		Namespace:   g.Namespace,
		Description: g.Description,
		StartFn:     start,
		Nodes:       nodes,
		Edges:       edges,
		Code:        code,
		CreatedAt:   g.CreatedAt,
	}, nil
}

// ParseComputeGraph decodes a graph submitted under namespace, converts it
// and validates the result. An empty namespace in the body takes the given
// one; a different one is rejected. Every error it returns is a client fault.
func ParseComputeGraph(namespace string, data []byte, code computegraph.Code) (*computegraph.ComputeGraph, error) {
	var wg ComputeGraph
	if err := json.Unmarshal(data, &wg); err != nil {
		if errors.Is(err, computegraph.ErrMalformedNode) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", computegraph.ErrMalformedGraph, err)
	}
	switch wg.Namespace {
	case "":
		wg.Namespace = namespace
	case namespace:
	default:
		return nil, fmt.Errorf("%w: namespace %q does not match %q", computegraph.ErrInvalidGraph, wg.Namespace, namespace)
	}

	g, err := wg.IntoModel(code)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// ComputeGraphsFromModel converts a list of internal graphs.
func ComputeGraphsFromModel(gs []*computegraph.ComputeGraph) []ComputeGraph {
	return fromModels(gs, ComputeGraphFromModel)
}
