package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS compute_graph_versions (
    namespace TEXT   NOT NULL,
    name      TEXT   NOT NULL,
    latest    BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (namespace, name)
);

CREATE TABLE IF NOT EXISTS compute_graphs (
    namespace   TEXT   NOT NULL,
    name        TEXT   NOT NULL,
    version     BIGINT NOT NULL,
    description TEXT   NOT NULL DEFAULT '',
    start_node  JSONB  NOT NULL,
    code_sha256 TEXT   NOT NULL,
    code_size   BIGINT NOT NULL,
    code_path   TEXT   NOT NULL,
    created_at  BIGINT NOT NULL,
    PRIMARY KEY (namespace, name, version)
);

CREATE TABLE IF NOT EXISTS compute_graph_nodes (
    namespace TEXT   NOT NULL,
    name      TEXT   NOT NULL,
    version   BIGINT NOT NULL,
    node_name TEXT   NOT NULL,
    data      JSONB  NOT NULL,
    PRIMARY KEY (namespace, name, version, node_name),
    FOREIGN KEY (namespace, name, version)
        REFERENCES compute_graphs (namespace, name, version) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS compute_graph_edges (
    namespace TEXT   NOT NULL,
    name      TEXT   NOT NULL,
    version   BIGINT NOT NULL,
    from_node TEXT   NOT NULL,
    to_nodes  TEXT[] NOT NULL,
    PRIMARY KEY (namespace, name, version, from_node),
    FOREIGN KEY (namespace, name, version)
        REFERENCES compute_graphs (namespace, name, version) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_compute_graphs_code ON compute_graphs(code_sha256);
`

// CreateSchema creates the compute graph tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops all compute graph tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx,
		`DROP TABLE IF EXISTS compute_graph_edges, compute_graph_nodes, compute_graphs, compute_graph_versions CASCADE;`)
	return err
}
