package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/computegraph"
	"github.com/meikuraledutech/computegraph/api"
)

// encodeNode stores nodes in their wire encoding so the variant tag survives in the row.
func encodeNode(n computegraph.Node) (json.RawMessage, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", computegraph.ErrInvalidGraph)
	}
	data, err := json.Marshal(api.NodeFromModel(n))
	if err != nil {
		return nil, fmt.Errorf("computegraph: encode node %s: %w", n.Name(), err)
	}
	return data, nil
}

// decodeNode errors are internal: a stored row that fails to decode is not the caller's fault.
func decodeNode(data []byte) (computegraph.Node, error) {
	var wn api.Node
	if err := json.Unmarshal(data, &wn); err != nil {
		return nil, fmt.Errorf("computegraph: decode stored node: %v", err)
	}
	n, err := wn.IntoModel()
	if err != nil {
		return nil, fmt.Errorf("computegraph: decode stored node: %v", err)
	}
	return n, nil
}

// insertNodes writes one row per node of g.
func insertNodes(ctx context.Context, tx pgx.Tx, g *computegraph.ComputeGraph) error {
	for key, n := range g.Nodes {
		data, err := encodeNode(n)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO compute_graph_nodes (namespace, name, version, node_name, data) VALUES ($1, $2, $3, $4, $5)`,
			g.Namespace, g.Name, int64(g.Version), key, data,
		); err != nil {
			return fmt.Errorf("computegraph: insert node %s: %w", key, err)
		}
	}
	return nil
}

// listNodes returns the nodes of one graph version keyed by name.
// Returns nil if the version has no node rows.
func listNodes(ctx context.Context, q querier, namespace, name string, version computegraph.GraphVersion) (map[string]computegraph.Node, error) {
	rows, err := q.Query(ctx,
		`SELECT node_name, data FROM compute_graph_nodes WHERE namespace = $1 AND name = $2 AND version = $3`,
		namespace, name, int64(version))
	if err != nil {
		return nil, fmt.Errorf("computegraph: list nodes: %w", err)
	}
	defer rows.Close()

	var nodes map[string]computegraph.Node
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("computegraph: scan node: %w", err)
		}
		n, err := decodeNode(data)
		if err != nil {
			return nil, err
		}
		if nodes == nil {
			nodes = make(map[string]computegraph.Node)
		}
		nodes[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("computegraph: rows nodes: %w", err)
	}

	return nodes, nil
}
