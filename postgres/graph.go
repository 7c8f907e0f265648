package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/computegraph"
)

// CreateGraph saves a full graph (header, nodes, edges) in one transaction
// under the next version for its (namespace, name).
// The version counter row is locked FOR UPDATE, so concurrent creations of
// the same graph are serialized; the primary key rejects any duplicate version.
func (s *PGStore) CreateGraph(ctx context.Context, g *computegraph.ComputeGraph) (*computegraph.ComputeGraph, error) {
	stored := g.Clone()
	if stored.CreatedAt == 0 {
		stored.CreatedAt = computegraph.NowMillis()
	}
	start, err := encodeNode(stored.StartFn)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("computegraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Allocate the next version.
	if _, err := tx.Exec(ctx,
		`INSERT INTO compute_graph_versions (namespace, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		g.Namespace, g.Name,
	); err != nil {
		return nil, fmt.Errorf("computegraph: init version counter: %w", err)
	}
	var latest int64
	if err := tx.QueryRow(ctx,
		`SELECT latest FROM compute_graph_versions WHERE namespace = $1 AND name = $2 FOR UPDATE`,
		g.Namespace, g.Name,
	).Scan(&latest); err != nil {
		return nil, fmt.Errorf("computegraph: lock version counter: %w", err)
	}
	stored.Version = computegraph.NextVersion(computegraph.GraphVersion(latest))

	// Insert header.
	if _, err := tx.Exec(ctx,
		`INSERT INTO compute_graphs (namespace, name, version, description, start_node, code_sha256, code_size, code_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		stored.Namespace, stored.Name, int64(stored.Version), stored.Description, start,
		stored.Code.SHA256Hash, int64(stored.Code.Size), stored.Code.Path, int64(stored.CreatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s/%s v%s", computegraph.ErrVersionConflict, g.Namespace, g.Name, stored.Version)
		}
		return nil, fmt.Errorf("computegraph: insert graph: %w", err)
	}

	if err := insertNodes(ctx, tx, stored); err != nil {
		return nil, err
	}
	if err := insertEdges(ctx, tx, stored); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE compute_graph_versions SET latest = $3 WHERE namespace = $1 AND name = $2`,
		g.Namespace, g.Name, int64(stored.Version),
	); err != nil {
		return nil, fmt.Errorf("computegraph: bump version counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("computegraph: commit: %w", err)
	}

	return stored, nil
}

// GetGraph retrieves one version of a graph with its nodes and edges.
func (s *PGStore) GetGraph(ctx context.Context, namespace, name string, version computegraph.GraphVersion) (*computegraph.ComputeGraph, error) {
	g := &computegraph.ComputeGraph{Namespace: namespace, Name: name, Version: version}

	var start []byte
	var size, createdAt int64
	err := s.db.QueryRow(ctx,
		`SELECT description, start_node, code_sha256, code_size, code_path, created_at
		 FROM compute_graphs WHERE namespace = $1 AND name = $2 AND version = $3`,
		namespace, name, int64(version),
	).Scan(&g.Description, &start, &g.Code.SHA256Hash, &size, &g.Code.Path, &createdAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s/%s v%s", computegraph.ErrGraphNotFound, namespace, name, version)
		}
		return nil, fmt.Errorf("computegraph: get graph: %w", err)
	}
	g.Code.Size = uint64(size)
	g.CreatedAt = uint64(createdAt)

	if g.StartFn, err = decodeNode(start); err != nil {
		return nil, err
	}
	if g.Nodes, err = listNodes(ctx, s.db, namespace, name, version); err != nil {
		return nil, err
	}
	if g.Edges, err = listEdges(ctx, s.db, namespace, name, version); err != nil {
		return nil, err
	}

	return g, nil
}

// GetLatestGraph retrieves the highest stored version of a graph.
func (s *PGStore) GetLatestGraph(ctx context.Context, namespace, name string) (*computegraph.ComputeGraph, error) {
	var latest *int64
	err := s.db.QueryRow(ctx,
		`SELECT max(version) FROM compute_graphs WHERE namespace = $1 AND name = $2`,
		namespace, name,
	).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("computegraph: latest version: %w", err)
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: %s/%s", computegraph.ErrGraphNotFound, namespace, name)
	}
	return s.GetGraph(ctx, namespace, name, computegraph.GraphVersion(*latest))
}

// ListVersions returns all stored versions of a graph, ascending.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListVersions(ctx context.Context, namespace, name string) ([]computegraph.GraphVersion, error) {
	rows, err := s.db.Query(ctx,
		`SELECT version FROM compute_graphs WHERE namespace = $1 AND name = $2 ORDER BY version`,
		namespace, name)
	if err != nil {
		return nil, fmt.Errorf("computegraph: list versions: %w", err)
	}
	defer rows.Close()

	versions := []computegraph.GraphVersion{}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("computegraph: scan version: %w", err)
		}
		versions = append(versions, computegraph.GraphVersion(v))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("computegraph: rows versions: %w", err)
	}

	return versions, nil
}

// DeleteGraph removes every version of a graph; nodes and edges cascade.
// The version counter is kept so versions are never reused.
// No error if the graph doesn't exist.
func (s *PGStore) DeleteGraph(ctx context.Context, namespace, name string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM compute_graphs WHERE namespace = $1 AND name = $2`, namespace, name)
	if err != nil {
		return fmt.Errorf("computegraph: delete graph: %w", err)
	}
	return nil
}
