package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/computegraph"
)

// insertEdges writes one row per edge source; destinations keep their order in a TEXT[].
func insertEdges(ctx context.Context, tx pgx.Tx, g *computegraph.ComputeGraph) error {
	for from, to := range g.Edges {
		if to == nil {
			to = []string{}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO compute_graph_edges (namespace, name, version, from_node, to_nodes) VALUES ($1, $2, $3, $4, $5)`,
			g.Namespace, g.Name, int64(g.Version), from, to,
		); err != nil {
			return fmt.Errorf("computegraph: insert edges from %s: %w", from, err)
		}
	}
	return nil
}

// listEdges returns the edge map of one graph version.
// Returns nil if the version has no edges.
func listEdges(ctx context.Context, q querier, namespace, name string, version computegraph.GraphVersion) (map[string][]string, error) {
	rows, err := q.Query(ctx,
		`SELECT from_node, to_nodes FROM compute_graph_edges WHERE namespace = $1 AND name = $2 AND version = $3`,
		namespace, name, int64(version))
	if err != nil {
		return nil, fmt.Errorf("computegraph: list edges: %w", err)
	}
	defer rows.Close()

	var edges map[string][]string
	for rows.Next() {
		var from string
		var to []string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("computegraph: scan edges: %w", err)
		}
		if edges == nil {
			edges = make(map[string][]string)
		}
		edges[from] = to
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("computegraph: rows edges: %w", err)
	}

	return edges, nil
}
