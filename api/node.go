// Package api holds the wire representation of compute graphs shared with
// client SDKs, and the conversions to and from the internal model.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/meikuraledutech/computegraph"
)

// Variant tags. These are part of the cross-language contract and must never
// be renamed.
const (
	TagComputeFn     = "compute_fn"
	TagDynamicRouter = "dynamic_router"
)

// ComputeFn is the wire form of a compute step.
type ComputeFn struct {
	Name        string `json:"name"`
	FnName      string `json:"fn_name"`
	Description string `json:"description"`
	Reducer     bool   `json:"reducer"`
}

// DynamicRouter is the wire form of a dynamic router.
type DynamicRouter struct {
	Name        string   `json:"name"`
	SourceFn    string   `json:"source_fn"`
	Description string   `json:"description"`
	TargetFns   []string `json:"target_fns"`
}

// Node is a single-key tagged object: {"compute_fn": {...}} or
// {"dynamic_router": {...}}. Exactly one field is set.
type Node struct {
	ComputeFn     *ComputeFn
	DynamicRouter *DynamicRouter
}

// Name returns the declared name of whichever variant is set.
func (n Node) Name() string {
	switch {
	case n.ComputeFn != nil:
		return n.ComputeFn.Name
	case n.DynamicRouter != nil:
		return n.DynamicRouter.Name
	}
	return ""
}

func (n Node) MarshalJSON() ([]byte, error) {
	switch {
	case n.ComputeFn != nil && n.DynamicRouter == nil:
		return json.Marshal(map[string]*ComputeFn{TagComputeFn: n.ComputeFn})
	case n.DynamicRouter != nil && n.ComputeFn == nil:
		return json.Marshal(map[string]*DynamicRouter{TagDynamicRouter: n.DynamicRouter})
	}
	return nil, fmt.Errorf("%w: exactly one variant must be set", computegraph.ErrMalformedNode)
}

// UnmarshalJSON accepts exactly one known tag. Unknown tags are rejected so
// that a payload meant for a newer variant is never misread as an older one.
// Unknown fields inside a variant body are ignored.
func (n *Node) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("%w: %v", computegraph.ErrMalformedNode, err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("%w: expected exactly one variant tag, got %d", computegraph.ErrMalformedNode, len(tagged))
	}

	for tag, body := range tagged {
		if len(body) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
			return fmt.Errorf("%w: %q has no body", computegraph.ErrMalformedNode, tag)
		}
		switch tag {
		case TagComputeFn:
			var c ComputeFn
			if err := json.Unmarshal(body, &c); err != nil {
				return fmt.Errorf("%w: %s: %v", computegraph.ErrMalformedNode, tag, err)
			}
			*n = Node{ComputeFn: &c}
		case TagDynamicRouter:
			var r DynamicRouter
			if err := json.Unmarshal(body, &r); err != nil {
				return fmt.Errorf("%w: %s: %v", computegraph.ErrMalformedNode, tag, err)
			}
			*n = Node{DynamicRouter: &r}
		default:
			return fmt.Errorf("%w: unknown node kind %q", computegraph.ErrMalformedNode, tag)
		}
	}
	return nil
}

// NodeFromModel converts an internal node to its wire form.
func NodeFromModel(n computegraph.Node) Node {
	return computegraph.VisitNode(n,
		func(c computegraph.ComputeFn) Node {
			return Node{ComputeFn: &ComputeFn{
				Name:        c.NodeName,
				FnName:      c.FnName,
				Description: c.Description,
				Reducer:     c.Reducer,
			}}
		},
		func(r computegraph.DynamicRouter) Node {
			return Node{DynamicRouter: &DynamicRouter{
				Name:        r.NodeName,
				SourceFn:    r.SourceFn,
				Description: r.Description,
				TargetFns:   slices.Clone(r.TargetFns),
			}}
		},
	)
}

// IntoModel converts the wire node to its internal variant.
func (n Node) IntoModel() (computegraph.Node, error) {
	switch {
	case n.ComputeFn != nil && n.DynamicRouter == nil:
		c := n.ComputeFn
		return computegraph.ComputeFn{
			NodeName:    c.Name,
			FnName:      c.FnName,
			Description: c.Description,
			Reducer:     c.Reducer,
		}, nil
	case n.DynamicRouter != nil && n.ComputeFn == nil:
		r := n.DynamicRouter
		return computegraph.DynamicRouter{
			NodeName:    r.Name,
			SourceFn:    r.SourceFn,
			Description: r.Description,
			TargetFns:   slices.Clone(r.TargetFns),
		}, nil
	}
	return nil, fmt.Errorf("%w: exactly one variant must be set", computegraph.ErrMalformedNode)
}
