// Package memstore is an in-memory implementation of computegraph.Store.
//
// It keeps every version of every graph in process memory and is meant for
// local development, tests, and servers started without a database. Graphs
// are deep-copied on the way in and out, so callers never alias stored data.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/meikuraledutech/computegraph"
)

type graphKey struct {
	namespace string
	name      string
}

// Store is guarded by a single RWMutex; version allocation for a graph
// happens under the write lock.
type Store struct {
	mu     sync.RWMutex
	graphs map[graphKey]map[computegraph.GraphVersion]*computegraph.ComputeGraph
	latest map[graphKey]computegraph.GraphVersion
}

var _ computegraph.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{
		graphs: make(map[graphKey]map[computegraph.GraphVersion]*computegraph.ComputeGraph),
		latest: make(map[graphKey]computegraph.GraphVersion),
	}
}

// CreateSchema is a no-op.
func (s *Store) CreateSchema(ctx context.Context) error { return nil }

// DropSchema discards everything.
func (s *Store) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.graphs)
	clear(s.latest)
	return nil
}

// CreateGraph stores a copy of g under the next version.
// The latest version counter survives DeleteGraph, so versions are never reused.
func (s *Store) CreateGraph(ctx context.Context, g *computegraph.ComputeGraph) (*computegraph.ComputeGraph, error) {
	stored := g.Clone()
	if stored.CreatedAt == 0 {
		stored.CreatedAt = computegraph.NowMillis()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := graphKey{g.Namespace, g.Name}
	v := computegraph.NextVersion(s.latest[k])
	versions := s.graphs[k]
	if versions == nil {
		versions = make(map[computegraph.GraphVersion]*computegraph.ComputeGraph)
		s.graphs[k] = versions
	}
	if _, ok := versions[v]; ok {
		return nil, fmt.Errorf("%w: %s/%s v%s", computegraph.ErrVersionConflict, g.Namespace, g.Name, v)
	}
	stored.Version = v
	versions[v] = stored
	s.latest[k] = v

	return stored.Clone(), nil
}

// GetGraph returns a copy of one stored version.
func (s *Store) GetGraph(ctx context.Context, namespace, name string, version computegraph.GraphVersion) (*computegraph.ComputeGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.graphs[graphKey{namespace, name}][version]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s v%s", computegraph.ErrGraphNotFound, namespace, name, version)
	}
	return g.Clone(), nil
}

// GetLatestGraph returns a copy of the highest stored version.
func (s *Store) GetLatestGraph(ctx context.Context, namespace, name string) (*computegraph.ComputeGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.graphs[graphKey{namespace, name}]
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", computegraph.ErrGraphNotFound, namespace, name)
	}
	var top computegraph.GraphVersion
	for v := range versions {
		top = max(top, v)
	}
	return versions[top].Clone(), nil
}

// ListVersions returns stored versions in ascending order.
// Returns an empty slice (not nil) if none found.
func (s *Store) ListVersions(ctx context.Context, namespace, name string) ([]computegraph.GraphVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []computegraph.GraphVersion{}
	for v := range s.graphs[graphKey{namespace, name}] {
		out = append(out, v)
	}
	slices.Sort(out)
	return out, nil
}

// DeleteGraph removes all versions of a graph.
func (s *Store) DeleteGraph(ctx context.Context, namespace, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.graphs, graphKey{namespace, name})
	return nil
}
